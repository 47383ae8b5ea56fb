package server

import (
	"github.com/jaakkos/blackboard/internal/domain"
)

// requireString extracts a non-empty string from args by key.
func requireString(args map[string]any, key string) (string, error) {
	v, _ := args[key].(string)
	if v == "" {
		return "", domain.Invalidf("%s is required", key)
	}
	return v, nil
}

// optionalString returns the string at key, or "" when absent.
func optionalString(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

// optionalInt returns the number at key as an int, or fallback when absent.
// JSON numbers arrive as float64.
func optionalInt(args map[string]any, key string, fallback int) int {
	if v, ok := args[key].(float64); ok {
		return int(v)
	}
	return fallback
}

// optionalInt64Ptr returns the number at key as *int64, or nil when absent.
func optionalInt64Ptr(args map[string]any, key string) *int64 {
	if v, ok := args[key].(float64); ok {
		n := int64(v)
		return &n
	}
	return nil
}

// tagsArg extracts a string array from args by key.
func tagsArg(args map[string]any, key string) ([]string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, domain.Invalidf("%s must be an array of strings", key)
	}
	tags := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, domain.Invalidf("%s must be an array of strings, got %T element", key, item)
		}
		tags = append(tags, s)
	}
	return tags, nil
}

// refsArg extracts an array of {where, what, ref} objects from args by key.
// Values are normalized later by validation; only the shape is checked here.
func refsArg(args map[string]any, key string) ([]domain.Reference, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, domain.Invalidf("%s must be an array of {where, what, ref} objects", key)
	}
	refs := make([]domain.Reference, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, domain.Invalidf("%s must be an array of {where, what, ref} objects, got %T element", key, item)
		}
		where, _ := obj["where"].(string)
		what, _ := obj["what"].(string)
		refs = append(refs, domain.Reference{Where: where, What: what, Ref: obj["ref"]})
	}
	return refs, nil
}
