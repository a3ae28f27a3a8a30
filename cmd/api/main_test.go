package main

import (
	"context"
	"strings"
	"testing"

	"github.com/angelmondragon/storefront-cart/pkg/config"
	"github.com/angelmondragon/storefront-cart/pkg/logger"
)

func TestRunReturnsBootstrapErrors(t *testing.T) {
	cfg := &config.Config{}
	cfg.Cart.Storage = "tape"

	err := run(cfg, logger.Nop())
	if err == nil || !strings.Contains(err.Error(), "unsupported cart storage") {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestRunReturnsErrorAfterStorageOpened(t *testing.T) {
	cfg := &config.Config{}
	cfg.Cart.Storage = config.StorageFile
	cfg.Cart.FileDir = t.TempDir()

	err := run(cfg, logger.Nop())
	if err == nil || !strings.Contains(err.Error(), "create commerce client") {
		t.Fatalf("expected commerce client error, got %v", err)
	}
}

func TestOpenStorageLocalBackendsAreNotShared(t *testing.T) {
	for _, storage := range []string{config.StorageMemory, config.StorageFile} {
		t.Run(storage, func(t *testing.T) {
			cfg := &config.Config{}
			cfg.Cart.Storage = storage
			cfg.Cart.FileDir = t.TempDir()

			st, err := openStorage(context.Background(), cfg, logger.Nop())
			if err != nil {
				t.Fatalf("open storage: %v", err)
			}
			if st.shared || st.backend == nil || st.guard == nil || len(st.closers) != 0 {
				t.Fatalf("unexpected storage %+v", st)
			}
		})
	}
}
