package topic

import "testing"

func logical(key, ts string, payload string) Logical {
	return Logical{Key: key, Data: []byte(payload), Timestamp: ts, Sequence: 1}
}

func TestDecodeRecordChat(t *testing.T) {
	msg := logical("5", "1700000000.000000001",
		`{"type":"CHAT_TOPIC","id":"chat-1","question":"What is this?","answer":"A test.","timestamp":"2026-01-01T00:00:00Z","usageQuota":2}`)

	rec := DecodeRecord(msg)
	if rec == nil {
		t.Fatal("Expected chat record, got nil")
	}
	if rec.Type != TypeChat {
		t.Errorf("Expected type %s, got %s", TypeChat, rec.Type)
	}
	if rec.ID != "chat-1" || rec.Question != "What is this?" || rec.Answer != "A test." {
		t.Errorf("Unexpected fields: %+v", rec)
	}
	if rec.UsageQuota == nil || *rec.UsageQuota != 2 {
		t.Errorf("Expected usageQuota 2, got %v", rec.UsageQuota)
	}
	if rec.Timestamp != "2026-01-01T00:00:00Z" {
		t.Errorf("Expected record-asserted timestamp, got %s", rec.Timestamp)
	}
}

func TestDecodeRecordChatMissingAnswer(t *testing.T) {
	rec := DecodeRecord(logical("5", "ts", `{"type":"CHAT_TOPIC","question":"Hello"}`))
	if rec == nil {
		t.Fatal("Expected record, got nil")
	}
	if rec.Answer != "No answer available" {
		t.Errorf("Expected answer placeholder, got %q", rec.Answer)
	}
	if rec.ID != "5" {
		t.Errorf("Expected id fallback to key, got %s", rec.ID)
	}
}

func TestDecodeRecordChatMissingQuestion(t *testing.T) {
	if rec := DecodeRecord(logical("5", "ts", `{"type":"CHAT_TOPIC","answer":"orphan"}`)); rec != nil {
		t.Errorf("Expected nil for chat without question, got %+v", rec)
	}
}

func TestDecodeRecordQuotaUpdate(t *testing.T) {
	rec := DecodeRecord(logical("9", "ts",
		`{"type":"MESSAGE_ALLOWANCE_UPDATE","totalAllowance":20,"messagesUsed":4,"timestamp":"2026-01-02T00:00:00Z"}`))
	if rec == nil {
		t.Fatal("Expected quota update record, got nil")
	}
	if !rec.IsQuotaUpdate() {
		t.Error("Expected IsQuotaUpdate to be true")
	}
	if rec.ID != "quota-9" {
		t.Errorf("Expected synthesized id quota-9, got %s", rec.ID)
	}
	if rec.TotalAllowance == nil || *rec.TotalAllowance != 20 {
		t.Errorf("Expected totalAllowance 20, got %v", rec.TotalAllowance)
	}
}

func TestDecodeRecordQuotaUpdateWithoutNumbers(t *testing.T) {
	if rec := DecodeRecord(logical("9", "ts", `{"type":"CHAT_TOPIC_QUOTA_UPDATE","note":"empty"}`)); rec != nil {
		t.Errorf("Expected nil for quota update with no numeric field, got %+v", rec)
	}
}

func TestDecodeRecordOpenConvAI(t *testing.T) {
	rec := DecodeRecord(logical("12", "1700000000.5",
		`{"type":"openconvai.message","input":{"message":"hi"},"output":{"message":"hello"},"metadata":{"timestamp":"2026-01-03T00:00:00Z","usageQuota":1}}`))
	if rec == nil {
		t.Fatal("Expected openconvai record, got nil")
	}
	if rec.Type != TypeChat {
		t.Errorf("Expected openconvai to classify as chat, got %s", rec.Type)
	}
	if rec.Question != "hi" || rec.Answer != "hello" {
		t.Errorf("Unexpected question/answer: %+v", rec)
	}
	if rec.Timestamp != "2026-01-03T00:00:00Z" {
		t.Errorf("Expected metadata timestamp, got %s", rec.Timestamp)
	}
}

func TestDecodeRecordProjectCreation(t *testing.T) {
	rec := DecodeRecord(logical("1", "ts", `{"type":"PROJECT_CREATION","name":"demo","chatCount":5}`))
	if rec == nil {
		t.Fatal("Expected creation record, got nil")
	}
	if !rec.IsCreation() {
		t.Error("Expected IsCreation to be true")
	}
	if rec.Raw["name"] != "demo" {
		t.Errorf("Expected raw payload retained, got %+v", rec.Raw)
	}
}

func TestDecodeRecordUnknownType(t *testing.T) {
	if rec := DecodeRecord(logical("1", "ts", `{"type":"SOMETHING_ELSE"}`)); rec != nil {
		t.Errorf("Expected nil for unknown type, got %+v", rec)
	}
}

func TestDecodeRecordMalformedJSON(t *testing.T) {
	if rec := DecodeRecord(logical("1", "ts", `not json at all`)); rec != nil {
		t.Errorf("Expected nil for malformed payload, got %+v", rec)
	}
}

func TestDecodeRecordsDropsNils(t *testing.T) {
	msgs := []Logical{
		logical("1", "ts", `{"type":"PROJECT_CREATION","name":"demo"}`),
		logical("2", "ts", `garbage`),
		logical("3", "ts", `{"type":"CHAT_TOPIC","question":"q","answer":"a"}`),
	}

	records := DecodeRecords(msgs)
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0].Type != TypeProjectCreation || records[1].Type != TypeChat {
		t.Errorf("Unexpected record types: %s, %s", records[0].Type, records[1].Type)
	}
}
