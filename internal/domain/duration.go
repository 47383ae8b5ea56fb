package domain

import (
	"strconv"
	"strings"
	"time"
)

// ParseDuration parses the blackboard duration syntax <n><unit> with units
// s, m, h, d, w. Used by --since flags and bulk cleanup cutoffs.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, Invalidf("empty duration")
	}
	if len(s) < 2 {
		return 0, Invalidf("invalid duration %q (expected <number><s|m|h|d|w>)", s)
	}
	numPart := s[:len(s)-1]
	unit := s[len(s)-1]

	n, err := strconv.ParseUint(numPart, 10, 32)
	if err != nil {
		return 0, Invalidf("invalid duration number: %s", numPart)
	}

	var secs int64
	switch unit {
	case 's':
		secs = int64(n)
	case 'm':
		secs = int64(n) * 60
	case 'h':
		secs = int64(n) * 3600
	case 'd':
		secs = int64(n) * 86400
	case 'w':
		secs = int64(n) * 604800
	default:
		return 0, Invalidf("invalid duration unit: %c (expected s, m, h, d, w)", unit)
	}
	return time.Duration(secs) * time.Second, nil
}
