package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Reference links a message or artifact to an internal or external entity.
// It is an embedded value with no lifecycle of its own, and the target it
// names is never validated against the external system.
//
// Ref is either an int64 (when the parsed text is all ASCII digits) or a
// string. JSON round-trips may surface numbers as float64; NormalizeRef
// folds those back to int64 at the validation boundary.
type Reference struct {
	Where string `json:"where"`
	What  string `json:"what"`
	Ref   any    `json:"ref"`
}

// ParseRef parses "where:what:ref" into a Reference. The split is on every
// colon, so anything other than exactly three non-empty parts fails.
func ParseRef(s string) (Reference, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return Reference{}, RefFormatErr(s)
	}
	where := strings.TrimSpace(parts[0])
	what := strings.TrimSpace(parts[1])
	refStr := strings.TrimSpace(parts[2])
	if where == "" || what == "" || refStr == "" {
		return Reference{}, RefFormatErr(s)
	}
	return Reference{Where: where, What: what, Ref: refValue(refStr)}, nil
}

// refValue coerces an all-ASCII-digit ref to int64, otherwise keeps the string.
func refValue(s string) any {
	for _, c := range s {
		if c < '0' || c > '9' {
			return s
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// Digits but out of int64 range: keep as string.
		return s
	}
	return n
}

// NormalizeRef validates a reference coming from JSON input and folds
// integral float64 ref values (the default JSON number decoding) to int64.
func NormalizeRef(r Reference) (Reference, error) {
	if r.Where == "" || r.What == "" {
		return Reference{}, RefFormatErr(fmt.Sprintf("%s:%s:%v", r.Where, r.What, r.Ref))
	}
	switch v := r.Ref.(type) {
	case string:
		if v == "" {
			return Reference{}, RefFormatErr(fmt.Sprintf("%s:%s:", r.Where, r.What))
		}
	case int64:
	case int:
		r.Ref = int64(v)
	case float64:
		if v == float64(int64(v)) {
			r.Ref = int64(v)
		} else {
			return Reference{}, Invalidf("ref must be a string or integer, got %v", v)
		}
	default:
		return Reference{}, Invalidf("ref must be a string or integer, got %T", r.Ref)
	}
	return r, nil
}

// RefText renders the ref value as text, the form used for storage-side
// comparisons (CAST ... AS TEXT) and display.
func (r Reference) RefText() string {
	switch v := r.Ref.(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// String renders the canonical where:what:ref form.
func (r Reference) String() string {
	return r.Where + ":" + r.What + ":" + r.RefText()
}

// MatchesRef reports whether any reference in refs equals the triple
// exactly. Used by both the list filters and the dedicated lookup.
func MatchesRef(refs []Reference, where, what, ref string) bool {
	for _, r := range refs {
		if r.Where == where && r.What == what && r.RefText() == ref {
			return true
		}
	}
	return false
}
