package topic

import (
	"encoding/json"
	"fmt"
)

// Record types carried on topic feeds. The quota-update event exists under
// two names because older feeds predate the allowance rename.
const (
	TypeChat                = "CHAT_TOPIC"
	TypeQuotaUpdate         = "CHAT_TOPIC_QUOTA_UPDATE"
	TypeAllowanceUpdate     = "MESSAGE_ALLOWANCE_UPDATE"
	TypeProjectCreation     = "PROJECT_CREATION"
	TypeProjectCreated      = "PROJECT_CREATED"
	TypeSubscriptionCreated = "SUBSCRIPTION_CREATED"
	TypeLicenseCreation     = "LICENSE_CREATION"
	TypeOpenConvAI          = "openconvai.message"
)

// Record is a classified feed payload. Numeric quota fields are pointers so
// callers can distinguish an absent field from an explicit zero.
type Record struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Question  string `json:"question,omitempty"`
	Answer    string `json:"answer,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`

	UsageQuota        *int `json:"usageQuota,omitempty"`
	TotalAllowance    *int `json:"totalAllowance,omitempty"`
	MessagesUsed      *int `json:"messagesUsed,omitempty"`
	RemainingMessages *int `json:"remainingMessages,omitempty"`
	NewTotal          *int `json:"newTotal,omitempty"`

	// Raw retains the decoded object for pass-through record types whose
	// callers pick their own fields (projects, subscriptions, licenses).
	Raw map[string]interface{} `json:"-"`
}

// IsCreation reports whether the record marks the project creation of its
// topic.
func (r *Record) IsCreation() bool {
	return r.Type == TypeProjectCreation || r.Type == TypeProjectCreated
}

// IsQuotaUpdate reports whether the record is an explicit quota update.
func (r *Record) IsQuotaUpdate() bool {
	return r.Type == TypeQuotaUpdate || r.Type == TypeAllowanceUpdate
}

// DecodeRecord classifies one logical payload. It returns nil for anything
// that cannot be decoded or that carries no recognized record shape;
// malformed feed content is never an error.
func DecodeRecord(msg Logical) *Record {
	var raw map[string]interface{}
	if err := json.Unmarshal(msg.Data, &raw); err != nil {
		return nil
	}

	recType, _ := raw["type"].(string)

	switch recType {
	case TypeChat:
		return decodeChat(raw, msg)
	case TypeQuotaUpdate, TypeAllowanceUpdate:
		return decodeQuotaUpdate(raw, recType, msg)
	case TypeOpenConvAI:
		return decodeOpenConvAI(raw, msg)
	case TypeProjectCreation, TypeProjectCreated, TypeSubscriptionCreated, TypeLicenseCreation:
		return &Record{
			ID:        stringField(raw, "id", msg.Key),
			Type:      recType,
			Timestamp: stringField(raw, "timestamp", msg.Timestamp),
			Raw:       raw,
		}
	default:
		return nil
	}
}

func decodeChat(raw map[string]interface{}, msg Logical) *Record {
	question, ok := raw["question"].(string)
	if !ok || question == "" {
		return nil
	}

	answer, _ := raw["answer"].(string)
	if answer == "" {
		answer = "No answer available"
	}

	rec := &Record{
		ID:        stringField(raw, "id", msg.Key),
		Type:      TypeChat,
		Question:  question,
		Answer:    answer,
		Timestamp: stringField(raw, "timestamp", msg.Timestamp),
		Raw:       raw,
	}
	rec.UsageQuota = intField(raw, "usageQuota")
	return rec
}

func decodeQuotaUpdate(raw map[string]interface{}, recType string, msg Logical) *Record {
	rec := &Record{
		// The quota- prefix keeps synthesized ids from colliding with a
		// chat record decoded from the same sequence/group key.
		ID:        stringField(raw, "id", "quota-"+msg.Key),
		Type:      recType,
		Timestamp: stringField(raw, "timestamp", msg.Timestamp),
		Raw:       raw,
	}
	rec.UsageQuota = intField(raw, "usageQuota")
	rec.TotalAllowance = intField(raw, "totalAllowance")
	rec.MessagesUsed = intField(raw, "messagesUsed")
	rec.RemainingMessages = intField(raw, "remainingMessages")
	rec.NewTotal = intField(raw, "newTotal")

	if rec.UsageQuota == nil && rec.TotalAllowance == nil && rec.MessagesUsed == nil &&
		rec.RemainingMessages == nil && rec.NewTotal == nil {
		return nil
	}
	return rec
}

func decodeOpenConvAI(raw map[string]interface{}, msg Logical) *Record {
	input, _ := raw["input"].(map[string]interface{})
	output, _ := raw["output"].(map[string]interface{})
	meta, _ := raw["metadata"].(map[string]interface{})

	question := ""
	if input != nil {
		question, _ = input["message"].(string)
	}
	if question == "" {
		return nil
	}

	answer := ""
	if output != nil {
		answer, _ = output["message"].(string)
	}
	if answer == "" {
		answer = "No answer available"
	}

	rec := &Record{
		ID:        stringField(raw, "id", msg.Key),
		Type:      TypeChat,
		Question:  question,
		Answer:    answer,
		Timestamp: msg.Timestamp,
		Raw:       raw,
	}
	if meta != nil {
		if ts := stringField(meta, "timestamp", ""); ts != "" {
			rec.Timestamp = ts
		}
		rec.UsageQuota = intField(meta, "usageQuota")
	}
	return rec
}

// DecodeRecords runs the classifier over every logical payload, dropping
// payloads that yield no record.
func DecodeRecords(msgs []Logical) []*Record {
	records := make([]*Record, 0, len(msgs))
	for _, msg := range msgs {
		if rec := DecodeRecord(msg); rec != nil {
			records = append(records, rec)
		}
	}
	return records
}

// stringField returns raw[key] as a string, tolerating numeric timestamps,
// with a fallback when the field is absent or empty.
func stringField(raw map[string]interface{}, key, fallback string) string {
	switch v := raw[key].(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return fmt.Sprintf("%v", v)
	}
	return fallback
}

// intField returns raw[key] as an int pointer, or nil when absent or not a
// number.
func intField(raw map[string]interface{}, key string) *int {
	v, ok := raw[key].(float64)
	if !ok {
		return nil
	}
	n := int(v)
	return &n
}
