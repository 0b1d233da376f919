package security

import (
	"strconv"
	"strings"
)

// ValidEntityID reports whether s is a well-formed ledger entity id
// (shard.realm.num, all non-negative integers). Topic, token, and account
// ids share this shape.
func ValidEntityID(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return false
	}
	for _, part := range parts {
		if part == "" || len(part) > 19 {
			return false
		}
		if _, err := strconv.ParseUint(part, 10, 64); err != nil {
			return false
		}
	}
	return true
}

// ValidConsensusTimestamp reports whether s is a well-formed
// seconds.nanoseconds consensus timestamp.
func ValidConsensusTimestamp(s string) bool {
	dot := strings.IndexByte(s, '.')
	if dot <= 0 || dot == len(s)-1 {
		return false
	}
	secs, nanos := s[:dot], s[dot+1:]
	if _, err := strconv.ParseUint(secs, 10, 64); err != nil {
		return false
	}
	if len(nanos) > 9 {
		return false
	}
	if _, err := strconv.ParseUint(nanos, 10, 32); err != nil {
		return false
	}
	return true
}

// SanitizeMemo strips control characters and truncates a user-supplied memo
// before it is written to the ledger.
func SanitizeMemo(memo string) string {
	memo = strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, memo)

	if len(memo) > 100 {
		memo = memo[:100]
	}
	return strings.TrimSpace(memo)
}
