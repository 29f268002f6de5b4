package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no results artifact has been written yet.
	ErrNotFound = errors.New("storage: no interview results found")

	// ErrInvalidResults is returned when the artifact lacks required keys.
	ErrInvalidResults = errors.New("storage: invalid results format")
)

// requiredKeys must be present in every artifact read back for the dashboard.
var requiredKeys = []string{"domain", "hr_results", "tech_results"}

// ResultStore persists the single most recent results artifact.
type ResultStore interface {
	Save(ctx context.Context, r *Results) error
	Load(ctx context.Context) (*Results, error)
}

// Pinger is implemented by stores that can report backend reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Encode serialises results the way every backend stores them.
func Encode(r *Results) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("storage: nil results")
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("storage: encode results: %w", err)
	}
	return data, nil
}

// Decode parses an artifact and checks that the keys the dashboard relies on
// are present.
func Decode(data []byte) (*Results, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrInvalidResults, err)
	}
	for _, key := range requiredKeys {
		if _, ok := raw[key]; !ok {
			return nil, fmt.Errorf("%w: missing %q", ErrInvalidResults, key)
		}
	}

	var r Results
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResults, err)
	}
	return &r, nil
}
