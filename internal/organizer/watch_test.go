package organizer_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"fastfox/internal/organizer"
	"fastfox/internal/testsupport"
)

type outcomeLog struct {
	mu       sync.Mutex
	outcomes []organizer.Outcome
}

func (l *outcomeLog) add(o organizer.Outcome) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.outcomes = append(l.outcomes, o)
}

func (l *outcomeLog) has(file string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, o := range l.outcomes {
		if o.File == file {
			return true
		}
	}
	return false
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestWatchOrganizesNewFiles(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"))

	f := newFixture(t, "x")
	testsupport.WriteFile(t, f.path("existing.xyz"), 8)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	log := &outcomeLog{}
	done := make(chan error, 1)
	go func() {
		done <- f.org.Watch(ctx, f.root, organizer.RunOptions{}, 0, log.add)
	}()

	waitFor(t, "initial pass", func() bool { return log.has("existing.xyz") })
	assertExists(t, f.path("other_files", "existing.xyz"))

	testsupport.WriteFile(t, f.path("fresh.xyz"), 8)
	waitFor(t, "new file", func() bool { return log.has("fresh.xyz") })
	assertExists(t, f.path("other_files", "fresh.xyz"))

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Watch returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not stop after cancel")
	}
}

func TestWatchHoldsRootLock(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"))

	f := newFixture(t, "x")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- f.org.Watch(ctx, f.root, organizer.RunOptions{}, time.Hour, nil)
	}()
	// The first pass creates the category directories once the lock is held.
	waitFor(t, "watch start", func() bool {
		_, err := os.Stat(f.path("other_files"))
		return err == nil
	})

	if _, err := f.org.Organize(context.Background(), f.root, organizer.RunOptions{}); !errors.Is(err, organizer.ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning while watching, got %v", err)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Watch returned error: %v", err)
	}
}

func TestWatchMissingRoot(t *testing.T) {
	f := newFixture(t, "x")
	err := f.org.Watch(context.Background(), f.path("absent"), organizer.RunOptions{}, 0, nil)
	if err == nil {
		t.Fatal("expected error for missing root")
	}
}
