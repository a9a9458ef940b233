package memory

import (
	"context"

	"sodaclicker/internal/app/ports"
)

type CredentialRepo struct {
	store *Store
}

func NewCredentialRepo(store *Store) CredentialRepo {
	return CredentialRepo{store: store}
}

func (r CredentialRepo) Create(_ context.Context, credential ports.CredentialRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, exists := r.store.credentials[credential.PlayerID]; exists {
		return ports.ErrConflict
	}
	r.store.credentials[credential.PlayerID] = credential
	return nil
}

func (r CredentialRepo) GetByPlayerID(_ context.Context, playerID string) (ports.CredentialRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	cred, ok := r.store.credentials[playerID]
	if !ok {
		return ports.CredentialRecord{}, ports.ErrNotFound
	}
	return cred, nil
}
