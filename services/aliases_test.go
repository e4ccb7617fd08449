package services

import (
	"os"
	"path/filepath"
	"testing"

	"sales-dashboard/models"
)

func TestAliasLookupPrefersFirstPresentKey(t *testing.T) {
	aliases := DefaultAliases()
	row := models.Row{"address": "", "Address": "1 Main St"}

	v, ok := aliases.Lookup(row, FieldAddress)
	if !ok || v != "1 Main St" {
		t.Errorf("Lookup: got %v, %v; want 1 Main St", v, ok)
	}
}

func TestAliasLookupFoldsCaseAndSpaces(t *testing.T) {
	aliases := DefaultAliases()
	row := models.Row{"CLOSED  DATE": "2022-05-01"}

	v, ok := aliases.Lookup(row, FieldDate)
	if !ok || v != "2022-05-01" {
		t.Errorf("Lookup: got %v, %v; want 2022-05-01", v, ok)
	}
}

func TestAliasLookupMissing(t *testing.T) {
	if _, ok := DefaultAliases().Lookup(models.Row{"Other": 1}, FieldCity); ok {
		t.Error("expected no value for missing field")
	}
}

func TestLoadAliasesExtendsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.yaml")
	content := "price:\n  - Closing Price\ncity:\n  - Municipality\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	aliases, err := LoadAliases(path)
	if err != nil {
		t.Fatalf("LoadAliases: %v", err)
	}
	v, ok := aliases.Lookup(models.Row{"Closing Price": "$10"}, FieldPrice)
	if !ok || v != "$10" {
		t.Errorf("custom price alias: got %v, %v", v, ok)
	}
	if _, ok := aliases.Lookup(models.Row{"price": 5}, FieldPrice); !ok {
		t.Error("default aliases should still apply")
	}
}

func TestLoadAliasesRejectsUnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.yaml")
	if err := os.WriteFile(path, []byte("zipcode: [Zip]\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadAliases(path); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestLoadAliasesEmptyPathUsesDefaults(t *testing.T) {
	aliases, err := LoadAliases("")
	if err != nil {
		t.Fatalf("LoadAliases: %v", err)
	}
	if len(aliases) != len(DefaultAliases()) {
		t.Errorf("expected default table")
	}
}
