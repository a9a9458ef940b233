package ports

import (
	"context"
	"time"

	"sodaclicker/internal/domain/economy"
)

// SaveRecord is the persisted snapshot of one player. Version increases by
// one on every successful write.
type SaveRecord struct {
	PlayerID  string
	Snapshot  economy.Snapshot
	Version   int64
	UpdatedAt time.Time
}

type SaveRepository interface {
	GetByPlayerID(ctx context.Context, playerID string) (SaveRecord, error)
	// SaveWithVersion writes rec when the stored version equals
	// expectedVersion (0 means absent) and returns ErrConflict otherwise.
	SaveWithVersion(ctx context.Context, rec SaveRecord, expectedVersion int64) error
}

type EventRepository interface {
	Append(ctx context.Context, playerID string, events []economy.DomainEvent) error
	ListByPlayerID(ctx context.Context, playerID string, limit int) ([]economy.DomainEvent, error)
}

type CredentialRecord struct {
	PlayerID  string
	KeyHash   []byte
	Status    string
	CreatedAt time.Time
}

type CredentialRepository interface {
	Create(ctx context.Context, credential CredentialRecord) error
	GetByPlayerID(ctx context.Context, playerID string) (CredentialRecord, error)
}

type PurchaseExecutionRecord struct {
	PlayerID       string
	IdempotencyKey string
	Upgrade        string
	Result         economy.PurchaseResult
	AppliedAt      time.Time
}

// PurchaseExecutionRepository remembers applied purchases by idempotency key
// so a resubmitted buy request is answered without buying twice.
type PurchaseExecutionRepository interface {
	GetByIdempotencyKey(ctx context.Context, playerID, key string) (*PurchaseExecutionRecord, error)
	SaveExecution(ctx context.Context, execution PurchaseExecutionRecord) error
}
