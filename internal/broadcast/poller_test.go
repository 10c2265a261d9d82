package broadcast

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/cricket-auction-backend/internal/models"
	"github.com/DoyleJ11/cricket-auction-backend/internal/store"
)

// fakeSource serves a fixed auction, failing reads while fail is set.
type fakeSource struct {
	mu    sync.Mutex
	a     *models.Auction
	fail  error
	reads int
}

func (f *fakeSource) GetAuctionSnapshot(_ context.Context, tid, aid string) (*models.Auction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.fail != nil {
		return nil, f.fail
	}
	if f.a == nil || f.a.ID != aid || f.a.TournamentID != tid {
		return nil, store.ErrNotFound
	}
	out := f.a.Clone()
	return &out, nil
}

func (f *fakeSource) set(fn func(f *fakeSource)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeSource) readCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

func recvSnapshot(t *testing.T, ch <-chan Snapshot, within time.Duration) Snapshot {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(within):
		t.Fatalf("timed out waiting for snapshot")
		return Snapshot{}
	}
}

func run(ctx context.Context, p *Poller, tid, aid string) (<-chan Snapshot, <-chan error) {
	out := make(chan Snapshot, 16)
	done := make(chan error, 1)
	go func() {
		done <- p.Run(ctx, tid, aid, func(_ context.Context, s Snapshot) error {
			out <- s
			return nil
		})
	}()
	return out, done
}

func seeded() *fakeSource {
	a := models.NewAuction("t1")
	a.ID = "a1"
	return &fakeSource{a: &a}
}

func TestPoller_SendsFullSnapshotEveryTick(t *testing.T) {
	src := seeded()
	p := NewPoller(src, nil, Policy{Interval: 20 * time.Millisecond}, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out, _ := run(ctx, p, "t1", "a1")

	first := recvSnapshot(t, out, 100*time.Millisecond)
	require.NotNil(t, first.Payload)
	assert.Equal(t, models.ChangeInit, first.Payload.ChangeKey)

	// unchanged rows are still pushed
	second := recvSnapshot(t, out, 100*time.Millisecond)
	require.NotNil(t, second.Payload)
	assert.True(t, first.Payload.UpdatedAt.Equal(second.Payload.UpdatedAt))
}

func TestPoller_MissingAuctionSendsNullPayload(t *testing.T) {
	src := seeded()
	p := NewPoller(src, nil, Policy{Interval: 20 * time.Millisecond}, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out, _ := run(ctx, p, "other", "a1")
	snap := recvSnapshot(t, out, 100*time.Millisecond)
	assert.Nil(t, snap.Payload)
}

func TestPoller_StopsOnCancel(t *testing.T) {
	src := seeded()
	p := NewPoller(src, nil, Policy{Interval: 10 * time.Millisecond}, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())

	out, done := run(ctx, p, "t1", "a1")
	recvSnapshot(t, out, 100*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("poll loop did not stop after cancel")
	}
	reads := src.readCount()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, reads, src.readCount(), "reads continued after cancel")
}

func TestPoller_SendErrorEndsLoop(t *testing.T) {
	src := seeded()
	p := NewPoller(src, nil, Policy{Interval: 10 * time.Millisecond}, nil, nil)
	gone := errors.New("viewer gone")

	err := p.Run(context.Background(), "t1", "a1", func(context.Context, Snapshot) error { return gone })
	assert.ErrorIs(t, err, gone)
}

func TestPoller_TransientFailureKeepsPolling(t *testing.T) {
	src := seeded()
	src.fail = errors.New("connection reset")
	p := NewPoller(src, nil, Policy{Interval: 5 * time.Millisecond, MaxBackoff: 10 * time.Millisecond, MaxFailures: 10}, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out, done := run(ctx, p, "t1", "a1")
	require.Eventually(t, func() bool { return src.readCount() >= 2 }, time.Second, 5*time.Millisecond)
	src.set(func(f *fakeSource) { f.fail = nil })

	snap := recvSnapshot(t, out, 200*time.Millisecond)
	assert.NotNil(t, snap.Payload)
	select {
	case err := <-done:
		t.Fatalf("loop ended early: %v", err)
	default:
	}
}

func TestPoller_SustainedFailureEndsLoop(t *testing.T) {
	src := seeded()
	src.fail = errors.New("database is down")
	p := NewPoller(src, nil, Policy{Interval: time.Millisecond, MaxBackoff: 4 * time.Millisecond, MaxFailures: 3}, nil, nil)

	err := p.Run(context.Background(), "t1", "a1", func(context.Context, Snapshot) error {
		t.Fatalf("nothing should be sent")
		return nil
	})
	assert.ErrorIs(t, err, ErrSustainedFailure)
	assert.Equal(t, 3, src.readCount())
}

func TestPoller_HubWakeReadsEarly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := NewHub(ctx)
	src := seeded()
	p := NewPoller(src, h, Policy{Interval: time.Hour}, nil, nil)

	out, _ := run(ctx, p, "t1", "a1")
	recvSnapshot(t, out, 100*time.Millisecond)

	// wait for the subscription to land before notifying
	require.Eventually(t, func() bool {
		return recvView(t, h, 100*time.Millisecond).ByAuction["a1"] == 1
	}, time.Second, 5*time.Millisecond)

	src.set(func(f *fakeSource) { f.a.Status = models.StatusInProgress })
	h.Notify("a1")

	snap := recvSnapshot(t, out, 100*time.Millisecond)
	require.NotNil(t, snap.Payload)
	assert.Equal(t, models.StatusInProgress, snap.Payload.Status)
}

func TestPolicy_Backoff(t *testing.T) {
	p := Policy{Interval: time.Second, MaxBackoff: 5 * time.Second}
	cases := map[int]time.Duration{1: time.Second, 2: 2 * time.Second, 3: 4 * time.Second, 4: 5 * time.Second, 10: 5 * time.Second}
	for failures, want := range cases {
		assert.Equal(t, want, p.backoff(failures), "failures=%d", failures)
	}
}

func TestPoller_WakeDoesNotCutBackoffShort(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := NewHub(ctx)
	src := seeded()
	src.fail = errors.New("database is down")
	p := NewPoller(src, h, Policy{Interval: time.Hour, MaxFailures: 10}, nil, nil)

	run(ctx, p, "t1", "a1")
	require.Eventually(t, func() bool { return src.readCount() == 1 }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool {
		return recvView(t, h, 100*time.Millisecond).ByAuction["a1"] == 1
	}, time.Second, 5*time.Millisecond)

	for range 3 {
		h.Notify("a1")
	}
	// make sure the hub has handed out the wake before checking
	recvView(t, h, 100*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 1, src.readCount(), "wake triggered a read during backoff")
}
