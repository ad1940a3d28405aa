// Package clientdata loads and validates client profiles at the system
// boundary. Loading failures are fatal to an execution run: the pipeline
// cannot match against nothing.
package clientdata

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"OpportunityScout/internal/model"
)

// ErrNoClients means the source yielded zero usable profiles.
var ErrNoClients = errors.New("no usable client profiles")

// Load reads client profiles from a JSON file and validates each one.
// Individual malformed profiles are dropped and logged; zero survivors is an
// error.
func Load(filePath string) ([]model.ClientProfile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read client file: %w", err)
	}
	var profiles []model.ClientProfile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("parse client file: %w", err)
	}
	return Validate(profiles)
}

// Validate filters a profile collection down to usable records. Profiles are
// validated once here, not re-checked inside each pipeline component.
func Validate(profiles []model.ClientProfile) ([]model.ClientProfile, error) {
	usable := make([]model.ClientProfile, 0, len(profiles))
	seen := make(map[string]bool, len(profiles))
	for i, p := range profiles {
		if err := check(p); err != nil {
			log.Printf("[WARN] dropping client record %d: %v", i, err)
			continue
		}
		if seen[p.ClientID] {
			log.Printf("[WARN] dropping duplicate client record %q", p.ClientID)
			continue
		}
		seen[p.ClientID] = true
		usable = append(usable, p)
	}
	if len(usable) == 0 {
		return nil, ErrNoClients
	}
	return usable, nil
}

func check(p model.ClientProfile) error {
	if p.ClientID == "" {
		return fmt.Errorf("missing client_id")
	}
	if p.Age < 0 || p.Age > 130 {
		return fmt.Errorf("implausible age %d", p.Age)
	}
	if p.Portfolio.TotalValue < 0 {
		return fmt.Errorf("negative portfolio value %v", p.Portfolio.TotalValue)
	}
	for i, h := range p.Holdings {
		if h.Value < 0 {
			return fmt.Errorf("holding %d has negative value", i)
		}
	}
	return nil
}
