package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExecuteOverlapGuard(t *testing.T) {
	tr := NewTracker(nil, discardLogger())
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		tr.Execute(ctx, "tick", func(context.Context) error {
			close(started)
			<-release
			return nil
		})
		close(done)
	}()
	<-started

	// Same name while running: skipped, not queued.
	ran := false
	tr.Execute(ctx, "tick", func(context.Context) error {
		ran = true
		return nil
	})
	if ran {
		t.Fatal("overlapping run of the same job must be skipped")
	}

	// A different name is unaffected.
	other := false
	tr.Execute(ctx, "other", func(context.Context) error {
		other = true
		return nil
	})
	if !other {
		t.Fatal("independent job was blocked")
	}

	close(release)
	<-done

	// After the first run finishes, the name is free again.
	again := false
	tr.Execute(ctx, "tick", func(context.Context) error {
		again = true
		return nil
	})
	if !again {
		t.Fatal("job name not released after completion")
	}
}

func TestExecuteSwallowsJobError(t *testing.T) {
	tr := NewTracker(nil, discardLogger())

	// A failing job is logged and recorded but never propagates; the guard
	// is released for the next run.
	tr.Execute(context.Background(), "tick", func(context.Context) error {
		return errors.New("boom")
	})

	ran := false
	tr.Execute(context.Background(), "tick", func(context.Context) error {
		ran = true
		return nil
	})
	if !ran {
		t.Fatal("failed job left the overlap guard held")
	}
}
