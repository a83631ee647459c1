package bus

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"ride-track/internal/general/logger"
)

// recorder collects delivered payloads for assertions.
type recorder struct {
	mu   sync.Mutex
	msgs []string
}

func (r *recorder) Deliver(payload []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, string(payload))
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.msgs))
	copy(out, r.msgs)
	return out
}

func (r *recorder) waitFor(t *testing.T, n int) []string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if got := r.snapshot(); len(got) >= n {
			return got
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d deliveries, got %d", n, len(r.snapshot()))
	return nil
}

func newTestBus(t *testing.T) *GroupBus {
	t.Helper()
	b := NewGroupBus(logger.New("bus-test"))
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestPublishFansOutToAllMembers(t *testing.T) {
	b := newTestBus(t)
	ctx := context.Background()

	members := []*recorder{{}, {}, {}}
	for _, m := range members {
		if err := b.Join(ctx, "ride_R1", m); err != nil {
			t.Fatalf("Join: %v", err)
		}
	}

	if err := b.Publish(ctx, "ride_R1", []byte(`{"n":1}`)); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	for i, m := range members {
		got := m.waitFor(t, 1)
		if len(got) != 1 || got[0] != `{"n":1}` {
			t.Fatalf("member %d got %v", i, got)
		}
	}
}

func TestPublishReachesOnlyTheNamedGroup(t *testing.T) {
	b := newTestBus(t)
	ctx := context.Background()

	inGroup := &recorder{}
	other := &recorder{}
	if err := b.Join(ctx, "ride_A", inGroup); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if err := b.Join(ctx, "ride_B", other); err != nil {
		t.Fatalf("Join: %v", err)
	}

	if err := b.Publish(ctx, "ride_A", []byte("hello")); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	inGroup.waitFor(t, 1)
	time.Sleep(50 * time.Millisecond)
	if got := other.snapshot(); len(got) != 0 {
		t.Fatalf("member of another group received %v", got)
	}
}

func TestLeaveStopsDelivery(t *testing.T) {
	b := newTestBus(t)
	ctx := context.Background()

	m := &recorder{}
	if err := b.Join(ctx, "ride_R1", m); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if err := b.Publish(ctx, "ride_R1", []byte("before")); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	m.waitFor(t, 1)

	b.Leave("ride_R1", m)

	if err := b.Publish(ctx, "ride_R1", []byte("after")); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	time.Sleep(100 * time.Millisecond)
	if got := m.snapshot(); len(got) != 1 {
		t.Fatalf("delivery after Leave: %v", got)
	}
}

func TestPublishToEmptyGroupIsNoop(t *testing.T) {
	b := newTestBus(t)

	if err := b.Publish(context.Background(), "ride_none", []byte("x")); err != nil {
		t.Fatalf("Publish to empty group: %v", err)
	}
}

func TestRejoinReplacesSubscription(t *testing.T) {
	b := newTestBus(t)
	ctx := context.Background()

	m := &recorder{}
	if err := b.Join(ctx, "ride_R1", m); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if err := b.Join(ctx, "ride_R1", m); err != nil {
		t.Fatalf("second Join: %v", err)
	}

	if err := b.Publish(ctx, "ride_R1", []byte("once")); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	m.waitFor(t, 1)
	time.Sleep(100 * time.Millisecond)
	if got := m.snapshot(); len(got) != 1 {
		t.Fatalf("want exactly one delivery after rejoin, got %v", got)
	}
}

func TestDeliveryOrderPerPublisher(t *testing.T) {
	b := newTestBus(t)
	ctx := context.Background()

	m := &recorder{}
	if err := b.Join(ctx, "ride_R1", m); err != nil {
		t.Fatalf("Join: %v", err)
	}

	const n = 20
	for i := 0; i < n; i++ {
		if err := b.Publish(ctx, "ride_R1", []byte(fmt.Sprintf("msg-%02d", i))); err != nil {
			t.Fatalf("Publish %d: %v", i, err)
		}
	}

	got := m.waitFor(t, n)
	for i := 0; i < n; i++ {
		want := fmt.Sprintf("msg-%02d", i)
		if got[i] != want {
			t.Fatalf("out of order at %d: got %q want %q (all: %v)", i, got[i], want, got)
		}
	}
}

func TestConcurrentJoinLeavePublish(t *testing.T) {
	b := newTestBus(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			group := fmt.Sprintf("ride_%d", i%2)
			m := &recorder{}
			for j := 0; j < 25; j++ {
				if err := b.Join(ctx, group, m); err != nil {
					t.Errorf("Join: %v", err)
					return
				}
				if err := b.Publish(ctx, group, []byte("x")); err != nil {
					t.Errorf("Publish: %v", err)
					return
				}
				b.Leave(group, m)
			}
		}(i)
	}
	wg.Wait()
}

func TestCloseRejectsFurtherUse(t *testing.T) {
	b := NewGroupBus(logger.New("bus-test"))

	m := &recorder{}
	if err := b.Join(context.Background(), "ride_R1", m); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if err := b.Join(context.Background(), "ride_R1", &recorder{}); err == nil {
		t.Fatal("Join after Close succeeded")
	}
	if err := b.Publish(context.Background(), "ride_R1", []byte("x")); err == nil {
		t.Fatal("Publish after Close succeeded")
	}
	// Close is idempotent
	if err := b.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
