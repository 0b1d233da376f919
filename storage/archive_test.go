package storage

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestMemoryArchiveReceipts(t *testing.T) {
	archive := NewMemoryArchive()
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := archive.SaveReceipt(ctx, ReceiptRecord{
			TopicID:        "0.0.1234",
			TransactionID:  "tx",
			SequenceNumber: int64(i + 1),
			RecordType:     "CHAT_TOPIC",
			Payload:        json.RawMessage(`{}`),
			RecordedAt:     base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("SaveReceipt failed: %v", err)
		}
	}
	if err := archive.SaveReceipt(ctx, ReceiptRecord{
		TopicID:    "0.0.9999",
		RecordType: "PROJECT_CREATION",
		RecordedAt: base.Add(time.Hour),
	}); err != nil {
		t.Fatalf("SaveReceipt failed: %v", err)
	}

	receipts, err := archive.ListReceipts(ctx, "0.0.1234", 0)
	if err != nil {
		t.Fatalf("ListReceipts failed: %v", err)
	}
	if len(receipts) != 3 {
		t.Fatalf("Expected 3 receipts for the topic, got %d", len(receipts))
	}
	if receipts[0].SequenceNumber != 3 {
		t.Errorf("Expected newest first, got sequence %d", receipts[0].SequenceNumber)
	}

	limited, err := archive.ListReceipts(ctx, "", 2)
	if err != nil {
		t.Fatalf("ListReceipts failed: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("Expected limit applied, got %d", len(limited))
	}
}

func TestMemoryArchiveLicenses(t *testing.T) {
	archive := NewMemoryArchive()
	ctx := context.Background()

	if err := archive.SaveLicense(ctx, LicenseRecord{}); err == nil {
		t.Error("Expected error for license without token id")
	}

	if err := archive.SaveLicense(ctx, LicenseRecord{
		TokenID:   "0.0.7777",
		AccountID: "0.0.2001",
		ProjectID: "proj-1",
		MintedAt:  time.Now(),
	}); err != nil {
		t.Fatalf("SaveLicense failed: %v", err)
	}
	if err := archive.SaveLicense(ctx, LicenseRecord{
		TokenID:   "0.0.8888",
		AccountID: "0.0.2002",
		MintedAt:  time.Now().Add(time.Minute),
	}); err != nil {
		t.Fatalf("SaveLicense failed: %v", err)
	}

	lic, err := archive.GetLicense(ctx, "0.0.7777")
	if err != nil {
		t.Fatalf("GetLicense failed: %v", err)
	}
	if lic.ProjectID != "proj-1" {
		t.Errorf("Unexpected license: %+v", lic)
	}

	if _, err := archive.GetLicense(ctx, "0.0.404"); err == nil {
		t.Error("Expected error for unknown token id")
	}

	all, err := archive.ListLicenses(ctx, "")
	if err != nil {
		t.Fatalf("ListLicenses failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 licenses, got %d", len(all))
	}
	if all[0].TokenID != "0.0.8888" {
		t.Errorf("Expected newest mint first, got %s", all[0].TokenID)
	}

	filtered, err := archive.ListLicenses(ctx, "0.0.2001")
	if err != nil {
		t.Fatalf("ListLicenses failed: %v", err)
	}
	if len(filtered) != 1 || filtered[0].TokenID != "0.0.7777" {
		t.Errorf("Unexpected account filter result: %+v", filtered)
	}
}
