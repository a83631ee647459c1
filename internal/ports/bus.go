package ports

import "context"

// BusMember receives messages published to a group it has joined. Deliver
// must not block for long; slow consumers stall only their own stream.
type BusMember interface {
	Deliver(payload []byte)
}

// Bus is a process-wide publish/subscribe mechanism keyed by group name.
// Groups come into existence on first Join and disappear when empty.
// Implementations must be safe for unbounded concurrent Join/Leave/Publish;
// a concurrent publish either sees a member or it does not.
type Bus interface {
	Join(ctx context.Context, group string, m BusMember) error
	// Leave removes the member from the group. After Leave returns, no new
	// delivery to the member starts for that group.
	Leave(group string, m BusMember)
	// Publish delivers payload to every current member of the group.
	// Publishing to a group with no members is a no-op.
	Publish(ctx context.Context, group string, payload []byte) error
	Close() error
}
