package store

import (
	"path/filepath"
	"testing"

	"github.com/stellarlinkco/qa-eval/internal/config"
)

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("nil config", func(t *testing.T) {
		if _, err := Open(nil); err == nil {
			t.Fatal("Open(nil): expected error")
		}
	})

	t.Run("memory", func(t *testing.T) {
		cfg := config.Default()
		cfg.Storage.Type = "memory"
		st, err := Open(cfg)
		if err != nil {
			t.Fatalf("Open memory: %v", err)
		}
		defer st.Close()
	})

	t.Run("sqlite with path", func(t *testing.T) {
		cfg := config.Default()
		cfg.Storage.Type = "sqlite"
		cfg.Storage.Path = filepath.Join(t.TempDir(), "qa.db")
		st, err := Open(cfg)
		if err != nil {
			t.Fatalf("Open sqlite: %v", err)
		}
		defer st.Close()
	})

	t.Run("unsupported", func(t *testing.T) {
		cfg := config.Default()
		cfg.Storage.Type = "postgres"
		if _, err := Open(cfg); err == nil {
			t.Fatal("Open postgres: expected error")
		}
	})
}
