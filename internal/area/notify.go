package area

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
)

// ChangedChannel carries "the curated areas changed" notifications between replicas.
const ChangedChannel = "areas:changed"

type Notifier struct {
	Redis *redis.Client
}

// Publish is a no-op without a Redis client (single-replica deployments).
func (n *Notifier) Publish(ctx context.Context, reason string) error {
	if n == nil || n.Redis == nil {
		return nil
	}
	return n.Redis.Publish(ctx, ChangedChannel, reason).Err()
}

// Watcher rebuilds the local index whenever another replica announces a change.
type Watcher struct {
	Redis    *redis.Client
	Resolver *Resolver
}

func (w *Watcher) Run(ctx context.Context) {
	sub := w.Redis.Subscribe(ctx, ChangedChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := w.Resolver.Rebuild(ctx, "redis"); err != nil {
				log.Printf("ERROR: [AreaWatcher] rebuild after %q: %v", msg.Payload, err)
			}
		}
	}
}
