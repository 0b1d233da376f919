package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ledgergate-backend/storage"
)

func newSeededArchive(t *testing.T) storage.Archive {
	t.Helper()
	archive := storage.NewMemoryArchive()
	ctx := context.Background()

	if err := archive.SaveReceipt(ctx, storage.ReceiptRecord{
		TopicID:        "0.0.1234",
		TransactionID:  "tx-1",
		SequenceNumber: 1,
		RecordType:     "CHAT_TOPIC",
		Payload:        json.RawMessage(`{"type":"CHAT_TOPIC"}`),
		RecordedAt:     time.Now(),
	}); err != nil {
		t.Fatalf("SaveReceipt failed: %v", err)
	}
	if err := archive.SaveLicense(ctx, storage.LicenseRecord{
		TokenID:      "0.0.7777",
		SerialNumber: 1,
		AccountID:    "0.0.2001",
		ProjectID:    "proj-1",
		MintedAt:     time.Now(),
	}); err != nil {
		t.Fatalf("SaveLicense failed: %v", err)
	}
	return archive
}

func TestHandleReceipts(t *testing.T) {
	handler := NewDataHandler(newSeededArchive(t))

	req := httptest.NewRequest(http.MethodGet, "/api/data/receipts?topic=0.0.1234", nil)
	rr := httptest.NewRecorder()
	handler.HandleReceipts(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	envelope := decodeEnvelope(t, rr.Body)
	receipts, _ := envelope["data"].([]interface{})
	if len(receipts) != 1 {
		t.Errorf("Expected 1 receipt, got %d", len(receipts))
	}
}

func TestHandleReceiptsMethodNotAllowed(t *testing.T) {
	handler := NewDataHandler(storage.NewMemoryArchive())

	req := httptest.NewRequest(http.MethodPost, "/api/data/receipts", nil)
	rr := httptest.NewRecorder()
	handler.HandleReceipts(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("Expected 405, got %d", rr.Code)
	}
}

func TestHandleArchivedLicenses(t *testing.T) {
	handler := NewDataHandler(newSeededArchive(t))

	req := httptest.NewRequest(http.MethodGet, "/api/data/licenses?account=0.0.2001", nil)
	rr := httptest.NewRecorder()
	handler.HandleLicenses(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	envelope := decodeEnvelope(t, rr.Body)
	licenses, _ := envelope["data"].([]interface{})
	if len(licenses) != 1 {
		t.Fatalf("Expected 1 license, got %d", len(licenses))
	}
	first, _ := licenses[0].(map[string]interface{})
	if first["token_id"] != "0.0.7777" {
		t.Errorf("Unexpected license: %+v", first)
	}
}

func TestHandleArchivedLicensesNoMatch(t *testing.T) {
	handler := NewDataHandler(newSeededArchive(t))

	req := httptest.NewRequest(http.MethodGet, "/api/data/licenses?account=0.0.9999", nil)
	rr := httptest.NewRecorder()
	handler.HandleLicenses(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	envelope := decodeEnvelope(t, rr.Body)
	licenses, _ := envelope["data"].([]interface{})
	if len(licenses) != 0 {
		t.Errorf("Expected no licenses, got %d", len(licenses))
	}
}
