package worker

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeJanitorQueue records maintenance calls
type fakeJanitorQueue struct {
	purgedWith   time.Duration
	releasedWith time.Duration
	purgeCount   int64
	releaseCount int64
	purgeErr     error
	releaseErr   error
}

func (f *fakeJanitorQueue) PurgeCompleted(ctx context.Context, olderThan time.Duration) (int64, error) {
	f.purgedWith = olderThan
	return f.purgeCount, f.purgeErr
}

func (f *fakeJanitorQueue) ReleaseStuck(ctx context.Context, stuckFor time.Duration) (int64, error) {
	f.releasedWith = stuckFor
	return f.releaseCount, f.releaseErr
}

func TestJanitor_SweepUsesRetentionWindow(t *testing.T) {
	q := &fakeJanitorQueue{purgeCount: 12}
	janitor := NewJanitor(q, 7*24*time.Hour)

	janitor.sweep(context.Background())

	if q.purgedWith != 7*24*time.Hour {
		t.Errorf("Expected purge with retention window, got %v", q.purgedWith)
	}
}

func TestJanitor_ReleaseStuckUsesDefaultWindow(t *testing.T) {
	q := &fakeJanitorQueue{releaseCount: 2}
	janitor := NewJanitor(q, 24*time.Hour)

	janitor.releaseStuck(context.Background())

	if q.releasedWith != 30*time.Minute {
		t.Errorf("Expected 30m stuck window, got %v", q.releasedWith)
	}
}

func TestJanitor_SweepFailureDoesNotPanic(t *testing.T) {
	q := &fakeJanitorQueue{
		purgeErr:   errors.New("database gone"),
		releaseErr: errors.New("database gone"),
	}
	janitor := NewJanitor(q, 24*time.Hour)

	janitor.sweep(context.Background())
	janitor.releaseStuck(context.Background())
}

func TestJanitor_StartAndStop(t *testing.T) {
	q := &fakeJanitorQueue{}
	janitor := NewJanitor(q, 24*time.Hour)

	if err := janitor.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	janitor.Stop()
}
