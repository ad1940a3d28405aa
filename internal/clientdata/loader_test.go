package clientdata

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"OpportunityScout/internal/model"
)

func TestLoad_ValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clients.json")
	payload := `[
		{"client_id": "C-001", "age": 62, "portfolio": {"total_value": 750000}, "attributes": {"risk_tolerance": "conservative"}},
		{"client_id": "C-002", "age": 45, "portfolio": {"total_value": 250000}}
	]`
	if err := os.WriteFile(path, []byte(payload), 0644); err != nil {
		t.Fatal(err)
	}

	profiles, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(profiles))
	}
	if v, ok := profiles[0].Attribute("risk_tolerance"); !ok || v != "conservative" {
		t.Errorf("expected risk_tolerance attribute, got %v (%v)", v, ok)
	}
	if v, _ := profiles[0].Attribute("portfolio_value"); v != 750000.0 {
		t.Errorf("expected portfolio_value 750000, got %v", v)
	}
}

func TestLoad_MissingFileIsFatal(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_MalformedJSONIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clients.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate_DropsBadRecordsKeepsGood(t *testing.T) {
	profiles := []model.ClientProfile{
		{ClientID: "", Age: 50},                                                          // missing id
		{ClientID: "C-001", Age: 200},                                                    // implausible age
		{ClientID: "C-002", Age: 50, Portfolio: model.Portfolio{TotalValue: -5}},         // negative portfolio
		{ClientID: "C-003", Age: 50, Portfolio: model.Portfolio{TotalValue: 100000}},     // good
		{ClientID: "C-003", Age: 51, Portfolio: model.Portfolio{TotalValue: 100000}},     // duplicate id
	}
	usable, err := Validate(profiles)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(usable) != 1 || usable[0].ClientID != "C-003" {
		t.Fatalf("expected only C-003 to survive, got %+v", usable)
	}
}

func TestValidate_ZeroUsableIsError(t *testing.T) {
	if _, err := Validate([]model.ClientProfile{{ClientID: "", Age: 50}}); !errors.Is(err, ErrNoClients) {
		t.Errorf("expected ErrNoClients, got %v", err)
	}
	if _, err := Validate(nil); !errors.Is(err, ErrNoClients) {
		t.Errorf("expected ErrNoClients for empty input, got %v", err)
	}
}
