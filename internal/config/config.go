// Package config populates service settings from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/tremorlab/seispick/internal/domain"
)

// DefaultPickUncertainty is the Gaussian pick error handed to NonLinLoc when
// a pick carries no uncertainty of its own, in seconds.
const DefaultPickUncertainty = 0.05

// Config holds all service settings, populated from environment variables.
type Config struct {
	// WorkDir is where exchange files for the external location programs
	// are written and their results read back.
	WorkDir string

	Hyp2000Bin string
	NLLocBin   string
	FocmecBin  string

	// NLLocControl is the control file name inside WorkDir that NonLinLoc
	// runs with; its LOCFILES statement names the velocity model.
	NLLocControl string

	DefaultPickUncertainty float64

	EventFile     string
	InventoryFile string

	HTTPAddr  string
	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	uncertainty, err := parsePickUncertainty()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		WorkDir:                envOrDefault("WORK_DIR", "."),
		Hyp2000Bin:             envOrDefault("HYP2000_BIN", "hyp2000"),
		NLLocBin:               envOrDefault("NLLOC_BIN", "NLLoc"),
		FocmecBin:              envOrDefault("FOCMEC_BIN", "focmec"),
		NLLocControl:           envOrDefault("NLLOC_CONTROL", "last.in"),
		DefaultPickUncertainty: uncertainty,
		EventFile:              envOrDefault("EVENT_FILE", "event.json"),
		InventoryFile:          os.Getenv("INVENTORY_FILE"),
		HTTPAddr:               envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:               envOrDefault("LOG_LEVEL", "info"),
		LogFormat:              envOrDefault("LOG_FORMAT", "json"),
	}

	if cfg.WorkDir == "" {
		return nil, errors.New("WORK_DIR is required")
	}
	if cfg.InventoryFile == "" {
		return nil, errors.New("INVENTORY_FILE is required")
	}

	return cfg, nil
}

func parsePickUncertainty() (float64, error) {
	s := os.Getenv("DEFAULT_PICK_UNCERTAINTY")
	if s == "" {
		return DefaultPickUncertainty, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, &domain.ConfigurationError{
			Key: "DEFAULT_PICK_UNCERTAINTY",
			Err: fmt.Errorf("want a positive number of seconds, got %q", s),
		}
	}
	return v, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
