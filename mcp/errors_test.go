package mcp

import (
	"errors"
	"strings"
	"testing"
)

func TestToolErrorMessages(t *testing.T) {
	err := NewMissingFieldError("get_quota", "topic_id")
	if err.Code != ErrCodeMissingRequired || err.HttpStatus != 400 {
		t.Errorf("Unexpected missing-field error: %+v", err)
	}
	if !strings.Contains(err.Error(), "topic_id") {
		t.Errorf("Expected field name in message, got %q", err.Error())
	}

	if e := NewProjectNotFoundError("get_quota", "0.0.1234"); e.HttpStatus != 404 || e.Code != ErrCodeProjectNotFound {
		t.Errorf("Unexpected project-not-found error: %+v", e)
	}
	if e := NewQuotaExhaustedError("send_chat_message", "0.0.1234"); e.HttpStatus != 429 || e.Code != ErrCodeQuotaExhausted {
		t.Errorf("Unexpected quota-exhausted error: %+v", e)
	}
	if e := NewUpstreamError("mint_license", "ledger gateway"); e.HttpStatus != 502 || e.Code != ErrCodeUpstreamUnavailable {
		t.Errorf("Unexpected upstream error: %+v", e)
	}
	if e := NewInternalError("get_quota", ""); e.HttpStatus != 500 || e.Message != "Internal server error" {
		t.Errorf("Unexpected internal error: %+v", e)
	}
}

func TestValidationErrorCollectsFields(t *testing.T) {
	verr := NewValidationError("mint_license", "Missing required parameters")
	if verr.HasErrors() {
		t.Fatal("Fresh validation error should have no fields")
	}

	verr.AddFieldError("account_id", nil, "Required string parameter", true)
	verr.AddFieldError("project_id", nil, "Required string parameter", true)

	if !verr.HasErrors() || len(verr.Fields) != 2 {
		t.Fatalf("Expected 2 field errors, got %+v", verr.Fields)
	}
	msg := verr.Error()
	if !strings.Contains(msg, "account_id") || !strings.Contains(msg, "project_id") {
		t.Errorf("Expected both field names in message, got %q", msg)
	}
}

func TestIsToolError(t *testing.T) {
	toolErr := NewUpstreamError("get_quota", "mirror node")
	if got, ok := IsToolError(toolErr); !ok || got != toolErr {
		t.Error("Expected ToolError to be recognized")
	}
	if _, ok := IsToolError(errors.New("plain")); ok {
		t.Error("Plain errors must not pass as ToolError")
	}
}

func TestGetHTTPStatusFromError(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{NewQuotaExhaustedError("send_chat_message", "0.0.1234"), 429},
		{NewProjectNotFoundError("get_quota", "0.0.1234"), 404},
		{NewValidationError("mint_license", "bad args"), 400},
		{errors.New("plain"), 500},
	}
	for _, tc := range cases {
		if got := GetHTTPStatusFromError(tc.err); got != tc.status {
			t.Errorf("GetHTTPStatusFromError(%v) = %d, want %d", tc.err, got, tc.status)
		}
	}
}
