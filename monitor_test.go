package spimotor

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/mdouchement/logger"
)

func TestHub_PublishSurvivesShutdown(t *testing.T) {
	cfg := Config{Socket: filepath.Join(t.TempDir(), "spimotord.sock")}
	h, err := NewHub(cfg)
	if err != nil {
		t.Fatal(err)
	}

	log := logger.WrapSlogHandler(logger.NewSlogTextHandler(io.Discard, &logger.SlogTextOption{
		Level: slog.LevelError,
	}))
	ctx, cancel := context.WithCancel(logger.WithLogger(context.Background(), log))

	h.Launch(ctx)
	h.Publish(Status{State: "RUNNING"})

	cancel()
	select {
	case <-h.done:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not shut down")
	}

	// Publishers keep running through teardown; this must neither block nor
	// panic on a closed channel.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			h.Publish(Status{State: "RUNNING"})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked after shutdown")
	}
}
