package memory

import (
	"sync"

	"sodaclicker/internal/app/ports"
	"sodaclicker/internal/domain/economy"
)

// Store backs every in-memory repository. Repositories lock mu per call;
// TxManager serializes whole transactions with txMu.
type Store struct {
	mu          sync.RWMutex
	txMu        sync.Mutex
	saves       map[string]ports.SaveRecord
	execution   map[string]ports.PurchaseExecutionRecord
	events      map[string][]economy.DomainEvent
	credentials map[string]ports.CredentialRecord
}

func NewStore() *Store {
	return &Store{
		saves:       make(map[string]ports.SaveRecord),
		execution:   make(map[string]ports.PurchaseExecutionRecord),
		events:      make(map[string][]economy.DomainEvent),
		credentials: make(map[string]ports.CredentialRecord),
	}
}

func execKey(playerID, key string) string {
	return playerID + "::" + key
}

func (s *Store) SeedSave(rec ports.SaveRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves[rec.PlayerID] = rec
}
