package bus

import (
	"context"
	"errors"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"ride-track/internal/general/logger"
	"ride-track/internal/ports"
)

var ErrClosed = errors.New("bus: closed")

// GroupBus implements ports.Bus on top of Watermill's in-process gochannel
// pub/sub. Each group maps to one topic; each member holds its own
// subscription with a forwarding goroutine. Messages are acked only after
// delivery, so a member sees publishes from a single publisher in order.
type GroupBus struct {
	pubSub *gochannel.GoChannel
	logger *logger.Logger

	mu      sync.Mutex
	members map[string]map[ports.BusMember]*membership
	closed  bool
}

type membership struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewGroupBus creates the process-wide broadcast bus. Tear it down with
// Close at shutdown.
func NewGroupBus(log *logger.Logger) *GroupBus {
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		newWatermillLogger(log),
	)
	return &GroupBus{
		pubSub:  pubSub,
		logger:  log,
		members: make(map[string]map[ports.BusMember]*membership),
	}
}

// Join subscribes the member to the group, creating the group on first use.
// Joining a group the member already belongs to replaces the old
// subscription.
func (b *GroupBus) Join(ctx context.Context, group string, m ports.BusMember) error {
	// membership lifetime is governed by Leave/Close, not the caller ctx
	subCtx, cancel := context.WithCancel(context.Background())
	ch, err := b.pubSub.Subscribe(subCtx, group)
	if err != nil {
		cancel()
		return err
	}

	ms := &membership{cancel: cancel, done: make(chan struct{})}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		cancel()
		return ErrClosed
	}
	var prev *membership
	if b.members[group] == nil {
		b.members[group] = make(map[ports.BusMember]*membership)
	} else {
		prev = b.members[group][m]
	}
	b.members[group][m] = ms
	b.mu.Unlock()

	if prev != nil {
		prev.stop()
	}

	go forward(ch, m, ms.done)

	b.logger.Debug(ctx, "bus_joined", "Member joined broadcast group", map[string]any{"group": group})
	return nil
}

// Leave removes the member from the group. No new delivery to the member
// starts after Leave returns.
func (b *GroupBus) Leave(group string, m ports.BusMember) {
	b.mu.Lock()
	var ms *membership
	if set, ok := b.members[group]; ok {
		ms = set[m]
		delete(set, m)
		if len(set) == 0 {
			delete(b.members, group)
		}
	}
	b.mu.Unlock()

	if ms != nil {
		ms.stop()
		b.logger.Debug(context.Background(), "bus_left", "Member left broadcast group", map[string]any{"group": group})
	}
}

// Publish delivers payload to every current member of the group. A group
// with no members swallows the message.
func (b *GroupBus) Publish(ctx context.Context, group string, payload []byte) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	b.mu.Unlock()

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return b.pubSub.Publish(group, msg)
}

// Close drops all memberships and shuts the underlying pub/sub down.
func (b *GroupBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	all := b.members
	b.members = make(map[string]map[ports.BusMember]*membership)
	b.mu.Unlock()

	for _, set := range all {
		for _, ms := range set {
			ms.stop()
		}
	}
	return b.pubSub.Close()
}

func (ms *membership) stop() {
	ms.once.Do(func() {
		close(ms.done)
		ms.cancel()
	})
}

// forward pumps one subscription into one member until the subscription
// channel closes. The done guard keeps a half-left member from receiving
// messages that were already queued.
func forward(ch <-chan *message.Message, m ports.BusMember, done chan struct{}) {
	for msg := range ch {
		select {
		case <-done:
			msg.Ack()
			continue
		default:
		}
		m.Deliver(msg.Payload)
		msg.Ack()
	}
}
