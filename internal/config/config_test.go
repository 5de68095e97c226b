package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tremorlab/seispick/internal/domain"
)

func TestLoad(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		for _, key := range []string{"WORK_DIR", "HYP2000_BIN", "NLLOC_BIN", "FOCMEC_BIN",
			"NLLOC_CONTROL", "DEFAULT_PICK_UNCERTAINTY", "EVENT_FILE", "HTTP_ADDR",
			"LOG_LEVEL", "LOG_FORMAT"} {
			t.Setenv(key, "")
		}
		t.Setenv("INVENTORY_FILE", "inventory.json")

		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, ".", cfg.WorkDir)
		assert.Equal(t, "hyp2000", cfg.Hyp2000Bin)
		assert.Equal(t, "NLLoc", cfg.NLLocBin)
		assert.Equal(t, "focmec", cfg.FocmecBin)
		assert.Equal(t, "last.in", cfg.NLLocControl)
		assert.InDelta(t, DefaultPickUncertainty, cfg.DefaultPickUncertainty, 1e-9)
		assert.Equal(t, "event.json", cfg.EventFile)
		assert.Equal(t, ":8080", cfg.HTTPAddr)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, "json", cfg.LogFormat)
	})

	t.Run("reads overrides", func(t *testing.T) {
		t.Setenv("INVENTORY_FILE", "inventory.json")
		t.Setenv("WORK_DIR", "/tmp/seispick")
		t.Setenv("DEFAULT_PICK_UNCERTAINTY", "0.1")
		t.Setenv("NLLOC_CONTROL", "bavaria.in")

		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, "/tmp/seispick", cfg.WorkDir)
		assert.InDelta(t, 0.1, cfg.DefaultPickUncertainty, 1e-9)
		assert.Equal(t, "bavaria.in", cfg.NLLocControl)
	})

	t.Run("rejects an invalid pick uncertainty", func(t *testing.T) {
		t.Setenv("INVENTORY_FILE", "inventory.json")
		t.Setenv("DEFAULT_PICK_UNCERTAINTY", "not-a-number")

		_, err := Load()

		var cerr *domain.ConfigurationError
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, "DEFAULT_PICK_UNCERTAINTY", cerr.Key)
	})

	t.Run("rejects a non-positive pick uncertainty", func(t *testing.T) {
		t.Setenv("INVENTORY_FILE", "inventory.json")
		t.Setenv("DEFAULT_PICK_UNCERTAINTY", "-0.05")

		_, err := Load()

		assert.Error(t, err)
	})

	t.Run("requires the inventory file", func(t *testing.T) {
		t.Setenv("INVENTORY_FILE", "")

		_, err := Load()

		assert.ErrorContains(t, err, "INVENTORY_FILE")
	})
}
