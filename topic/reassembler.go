package topic

import (
	"encoding/base64"
	"log"
	"sort"
	"strconv"

	"ledgergate-backend/mirror"
)

// Logical is one complete decoded payload recovered from the feed: either a
// single unchunked entry or the concatenation of a finished chunk group.
type Logical struct {
	// Key identifies the originating submission. For unchunked entries it
	// is the sequence number; for chunk groups it is derived from the
	// initial transaction reference.
	Key string

	// Data holds the raw (base64-decoded) payload bytes.
	Data []byte

	// Timestamp is the consensus timestamp of the entry, or the maximum
	// consensus timestamp across a chunk group's entries.
	Timestamp string

	// Sequence is the lowest sequence number that contributed.
	Sequence int64
}

// chunkGroup accumulates the slots of one multi-chunk submission.
type chunkGroup struct {
	slots     [][]byte
	timestamp string
	sequence  int64
	order     int
}

// Reassemble turns the raw entry list for a topic into ordered logical
// payloads. Entries must be supplied in ascending sequence order. Chunked
// entries are grouped by their initial transaction reference and slotted by
// chunk number, so chunk arrival order never affects the assembled bytes.
// Groups still missing a slot at the end of the scan are dropped.
func Reassemble(entries []mirror.Entry) []Logical {
	var out []Logical
	groups := make(map[string]*chunkGroup)
	groupOrder := 0

	for _, entry := range entries {
		data, err := base64.StdEncoding.DecodeString(entry.Message)
		if err != nil {
			log.Printf("Skipping entry %d: undecodable payload: %v", entry.SequenceNumber, err)
			continue
		}

		ci := entry.ChunkInfo
		if ci == nil || ci.Total <= 1 {
			out = append(out, Logical{
				Key:       strconv.FormatInt(entry.SequenceNumber, 10),
				Data:      data,
				Timestamp: entry.ConsensusTimestamp,
				Sequence:  entry.SequenceNumber,
			})
			continue
		}

		if ci.Number < 1 || ci.Number > ci.Total {
			log.Printf("Skipping entry %d: chunk %d out of range (total %d)", entry.SequenceNumber, ci.Number, ci.Total)
			continue
		}

		key := groupKey(ci)
		group, ok := groups[key]
		if !ok {
			group = &chunkGroup{
				slots:    make([][]byte, ci.Total),
				sequence: entry.SequenceNumber,
				order:    groupOrder,
			}
			groupOrder++
			groups[key] = group
		}

		if ci.Total != len(group.slots) {
			log.Printf("Skipping entry %d: chunk total %d disagrees with group %s (%d)", entry.SequenceNumber, ci.Total, key, len(group.slots))
			continue
		}

		group.slots[ci.Number-1] = data
		if entry.ConsensusTimestamp > group.timestamp {
			group.timestamp = entry.ConsensusTimestamp
		}
		if entry.SequenceNumber < group.sequence {
			group.sequence = entry.SequenceNumber
		}
	}

	// Emit completed groups in first-seen order. Incomplete groups are
	// silently excluded for this fetch; re-streaming the topic later may
	// complete them.
	complete := make([]string, 0, len(groups))
	for key, group := range groups {
		if group.isComplete() {
			complete = append(complete, key)
		}
	}
	sort.Slice(complete, func(i, j int) bool {
		return groups[complete[i]].order < groups[complete[j]].order
	})

	for _, key := range complete {
		group := groups[key]
		out = append(out, Logical{
			Key:       key,
			Data:      group.assemble(),
			Timestamp: group.timestamp,
			Sequence:  group.sequence,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Sequence < out[j].Sequence
	})

	return out
}

func (g *chunkGroup) isComplete() bool {
	for _, slot := range g.slots {
		if len(slot) == 0 {
			return false
		}
	}
	return true
}

func (g *chunkGroup) assemble() []byte {
	size := 0
	for _, slot := range g.slots {
		size += len(slot)
	}
	buf := make([]byte, 0, size)
	for _, slot := range g.slots {
		buf = append(buf, slot...)
	}
	return buf
}

// groupKey derives the reassembly key for a chunked entry from its initial
// transaction reference, falling back to "unknown" when the reference is
// absent.
func groupKey(ci *mirror.ChunkInfo) string {
	tx := ci.InitialTransactionID
	if tx == nil {
		return "unknown"
	}
	return tx.AccountID + "-" + tx.TransactionValidStart
}
