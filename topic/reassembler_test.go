package topic

import (
	"encoding/base64"
	"testing"

	"ledgergate-backend/mirror"
)

func encode(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func chunkedEntry(seq int64, ts string, payload string, number, total int, account, validStart string) mirror.Entry {
	return mirror.Entry{
		SequenceNumber:     seq,
		ConsensusTimestamp: ts,
		Message:            encode(payload),
		ChunkInfo: &mirror.ChunkInfo{
			InitialTransactionID: &mirror.TransactionID{
				AccountID:             account,
				TransactionValidStart: validStart,
			},
			Number: number,
			Total:  total,
		},
	}
}

func TestReassembleUnchunked(t *testing.T) {
	entries := []mirror.Entry{
		{SequenceNumber: 1, ConsensusTimestamp: "100.1", Message: encode("first")},
		{SequenceNumber: 2, ConsensusTimestamp: "100.2", Message: encode("second")},
	}

	msgs := Reassemble(entries)
	if len(msgs) != 2 {
		t.Fatalf("Expected 2 logical messages, got %d", len(msgs))
	}
	if string(msgs[0].Data) != "first" || string(msgs[1].Data) != "second" {
		t.Errorf("Unexpected payloads: %q, %q", msgs[0].Data, msgs[1].Data)
	}
	if msgs[0].Key != "1" {
		t.Errorf("Expected sequence-derived key, got %s", msgs[0].Key)
	}
}

func TestReassembleChunkGroup(t *testing.T) {
	entries := []mirror.Entry{
		chunkedEntry(10, "100.1", `{"half":`, 1, 2, "0.0.1001", "170.5"),
		chunkedEntry(11, "100.2", `"one"}`, 2, 2, "0.0.1001", "170.5"),
	}

	msgs := Reassemble(entries)
	if len(msgs) != 1 {
		t.Fatalf("Expected 1 assembled message, got %d", len(msgs))
	}
	if string(msgs[0].Data) != `{"half":"one"}` {
		t.Errorf("Unexpected assembled payload: %q", msgs[0].Data)
	}
	if msgs[0].Key != "0.0.1001-170.5" {
		t.Errorf("Unexpected group key: %s", msgs[0].Key)
	}
	if msgs[0].Timestamp != "100.2" {
		t.Errorf("Expected max consensus timestamp, got %s", msgs[0].Timestamp)
	}
	if msgs[0].Sequence != 10 {
		t.Errorf("Expected lowest contributing sequence, got %d", msgs[0].Sequence)
	}
}

func TestReassembleChunkArrivalOrder(t *testing.T) {
	// Chunks slotted by number; arrival order must not affect the bytes.
	entries := []mirror.Entry{
		chunkedEntry(10, "100.1", "BBB", 2, 3, "0.0.1001", "170.5"),
		chunkedEntry(11, "100.2", "AAA", 1, 3, "0.0.1001", "170.5"),
		chunkedEntry(12, "100.3", "CCC", 3, 3, "0.0.1001", "170.5"),
	}

	msgs := Reassemble(entries)
	if len(msgs) != 1 {
		t.Fatalf("Expected 1 assembled message, got %d", len(msgs))
	}
	if string(msgs[0].Data) != "AAABBBCCC" {
		t.Errorf("Expected slot order AAABBBCCC, got %q", msgs[0].Data)
	}
}

func TestReassembleIncompleteGroupDropped(t *testing.T) {
	entries := []mirror.Entry{
		chunkedEntry(10, "100.1", "AAA", 1, 3, "0.0.1001", "170.5"),
		chunkedEntry(11, "100.2", "CCC", 3, 3, "0.0.1001", "170.5"),
		{SequenceNumber: 12, ConsensusTimestamp: "100.3", Message: encode("solo")},
	}

	msgs := Reassemble(entries)
	if len(msgs) != 1 {
		t.Fatalf("Expected incomplete group dropped, got %d messages", len(msgs))
	}
	if string(msgs[0].Data) != "solo" {
		t.Errorf("Expected only the unchunked entry, got %q", msgs[0].Data)
	}
}

func TestReassembleMissingTransactionIDFallback(t *testing.T) {
	entries := []mirror.Entry{
		{
			SequenceNumber:     20,
			ConsensusTimestamp: "100.1",
			Message:            encode("left-"),
			ChunkInfo:          &mirror.ChunkInfo{Number: 1, Total: 2},
		},
		{
			SequenceNumber:     21,
			ConsensusTimestamp: "100.2",
			Message:            encode("right"),
			ChunkInfo:          &mirror.ChunkInfo{Number: 2, Total: 2},
		},
	}

	msgs := Reassemble(entries)
	if len(msgs) != 1 {
		t.Fatalf("Expected shared fallback group to assemble, got %d", len(msgs))
	}
	if msgs[0].Key != "unknown" {
		t.Errorf("Expected fallback key, got %s", msgs[0].Key)
	}
	if string(msgs[0].Data) != "left-right" {
		t.Errorf("Unexpected payload: %q", msgs[0].Data)
	}
}

func TestReassembleOutOfRangeChunkSkipped(t *testing.T) {
	entries := []mirror.Entry{
		chunkedEntry(10, "100.1", "AAA", 1, 2, "0.0.1001", "170.5"),
		chunkedEntry(11, "100.2", "ZZZ", 5, 2, "0.0.1001", "170.5"),
		chunkedEntry(12, "100.3", "BBB", 2, 2, "0.0.1001", "170.5"),
	}

	msgs := Reassemble(entries)
	if len(msgs) != 1 {
		t.Fatalf("Expected 1 assembled message, got %d", len(msgs))
	}
	if string(msgs[0].Data) != "AAABBB" {
		t.Errorf("Expected out-of-range chunk ignored, got %q", msgs[0].Data)
	}
}

func TestReassembleUndecodableEntrySkipped(t *testing.T) {
	entries := []mirror.Entry{
		{SequenceNumber: 1, ConsensusTimestamp: "100.1", Message: "!!!not-base64!!!"},
		{SequenceNumber: 2, ConsensusTimestamp: "100.2", Message: encode("ok")},
	}

	msgs := Reassemble(entries)
	if len(msgs) != 1 {
		t.Fatalf("Expected undecodable entry skipped, got %d", len(msgs))
	}
	if string(msgs[0].Data) != "ok" {
		t.Errorf("Unexpected payload: %q", msgs[0].Data)
	}
}

func TestReassembleInterleavedGroups(t *testing.T) {
	entries := []mirror.Entry{
		chunkedEntry(1, "100.1", "a1", 1, 2, "0.0.1001", "170.1"),
		chunkedEntry(2, "100.2", "b1", 1, 2, "0.0.1002", "171.1"),
		chunkedEntry(3, "100.3", "b2", 2, 2, "0.0.1002", "171.1"),
		chunkedEntry(4, "100.4", "a2", 2, 2, "0.0.1001", "170.1"),
	}

	msgs := Reassemble(entries)
	if len(msgs) != 2 {
		t.Fatalf("Expected 2 assembled messages, got %d", len(msgs))
	}
	// Ordered by lowest contributing sequence.
	if string(msgs[0].Data) != "a1a2" || string(msgs[1].Data) != "b1b2" {
		t.Errorf("Unexpected group payloads: %q, %q", msgs[0].Data, msgs[1].Data)
	}
}
