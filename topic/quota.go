package topic

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"ledgergate-backend/security"
)

// ErrProjectNotFound is returned when a topic carries no project creation
// record, leaving the quota undefined.
var ErrProjectNotFound = errors.New("project not found: topic has no creation record")

const (
	// DefaultChatAllowance seeds the allowance when a creation record
	// omits an explicit count.
	DefaultChatAllowance = 3

	// BootstrapAllowance is assumed for a topic with no records at all,
	// so the very first chat turn can be written before any creation
	// record lands.
	BootstrapAllowance = 10
)

// QuotaState is the current usage quota for a topic, derived on demand by
// replaying the full record history. It is never persisted.
type QuotaState struct {
	TotalAllowance    int `json:"totalAllowance"`
	MessagesUsed      int `json:"messagesUsed"`
	RemainingMessages int `json:"remainingMessages"`
}

// ComputeQuota folds an ordered record history into the current quota.
//
// The latest explicit quota update, selected by record-asserted timestamp,
// wins over the naive chat-turn count. A quota update carrying an explicit
// allowance plus either a used or remaining count is authoritative as-is;
// one carrying only the legacy newTotal field resets the allowance but the
// used count still comes from the chat scan.
func ComputeQuota(records []*Record) (QuotaState, error) {
	var creation *Record
	for _, rec := range records {
		if rec.IsCreation() {
			creation = rec
			break
		}
	}
	if creation == nil {
		return QuotaState{}, ErrProjectNotFound
	}

	total := creationAllowance(creation)

	var latest *Record
	for _, rec := range records {
		if !rec.IsQuotaUpdate() {
			continue
		}
		if latest == nil || laterTimestamp(rec.Timestamp, latest.Timestamp) {
			latest = rec
		}
	}

	if latest != nil {
		if latest.TotalAllowance != nil {
			switch {
			case latest.MessagesUsed != nil:
				return clamp(*latest.TotalAllowance, *latest.MessagesUsed), nil
			case latest.RemainingMessages != nil:
				used := *latest.TotalAllowance - *latest.RemainingMessages
				if used < 0 {
					used = 0
				}
				return clamp(*latest.TotalAllowance, used), nil
			}
		}
		if latest.NewTotal != nil {
			total = *latest.NewTotal
		}
	}

	used := 0
	for _, rec := range records {
		if rec.Type == TypeChat {
			used++
		}
	}

	return clamp(total, used), nil
}

// recordTime parses a record-asserted timestamp. Feeds carry two forms:
// the consensus seconds.nanos form inherited when a payload omits its own
// timestamp, and RFC 3339 strings written by the services.
func recordTime(s string) (time.Time, bool) {
	if security.ValidConsensusTimestamp(s) {
		dot := strings.IndexByte(s, '.')
		secs, _ := strconv.ParseInt(s[:dot], 10, 64)
		frac := s[dot+1:]
		nanos, _ := strconv.ParseInt(frac+strings.Repeat("0", 9-len(frac)), 10, 64)
		return time.Unix(secs, nanos), true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// laterTimestamp reports whether a names a later instant than b. Parsed
// times order correctly across the two forms; unparseable values lose to
// parseable ones and fall back to a string comparison against each other.
func laterTimestamp(a, b string) bool {
	ta, oka := recordTime(a)
	tb, okb := recordTime(b)
	if oka && okb {
		return ta.After(tb)
	}
	if oka != okb {
		return oka
	}
	return a > b
}

// creationAllowance reads the seeded allowance off a creation record. The
// two service variants named the field differently.
func creationAllowance(creation *Record) int {
	if n := intField(creation.Raw, "chatCount"); n != nil {
		return *n
	}
	if n := intField(creation.Raw, "usageQuota"); n != nil {
		return *n
	}
	return DefaultChatAllowance
}

func clamp(total, used int) QuotaState {
	remaining := total - used
	if remaining < 0 {
		remaining = 0
	}
	return QuotaState{
		TotalAllowance:    total,
		MessagesUsed:      used,
		RemainingMessages: remaining,
	}
}
