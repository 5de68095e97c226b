// Package catalog persists the event under analysis as JSON so a session
// can be saved and resumed.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tremorlab/seispick/internal/domain"
)

// Encode serializes an event. Scatter samples are session state and are not
// persisted.
func Encode(event *domain.Event) ([]byte, error) {
	data, err := json.MarshalIndent(event, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode deserializes an event written by Encode.
func Decode(data []byte) (*domain.Event, error) {
	event := domain.Event{CurrentFocalMechanism: -1}
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	if event.ID == "" {
		return nil, fmt.Errorf("decode event: missing event id")
	}
	return &event, nil
}

// Load reads an event file. A missing file yields a fresh empty event so a
// new session starts cleanly.
func Load(path string) (*domain.Event, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return domain.NewEvent(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load event: %w", err)
	}
	return Decode(data)
}

// Save writes the event file.
func Save(path string, event *domain.Event) error {
	data, err := Encode(event)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save event: %w", err)
	}
	return nil
}
