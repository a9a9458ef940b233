package memory

import (
	"context"

	"sodaclicker/internal/domain/economy"
)

type EventRepo struct {
	store *Store
}

func NewEventRepo(store *Store) EventRepo {
	return EventRepo{store: store}
}

func (r EventRepo) Append(_ context.Context, playerID string, events []economy.DomainEvent) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.events[playerID] = append(r.store.events[playerID], events...)
	return nil
}

// ListByPlayerID returns the newest events first.
func (r EventRepo) ListByPlayerID(_ context.Context, playerID string, limit int) ([]economy.DomainEvent, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	all := r.store.events[playerID]
	if limit <= 0 || limit > len(all) {
		limit = len(all)
	}
	out := make([]economy.DomainEvent, 0, limit)
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}
