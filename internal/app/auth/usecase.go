package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"sodaclicker/internal/app/ports"
	"sodaclicker/internal/domain/economy"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	CredentialStatusActive = "active"
)

var (
	ErrInvalidRequest     = errors.New("invalid auth request")
	ErrInvalidCredentials = errors.New("invalid player credentials")
)

type RegisterRequest struct{}

type RegisterResponse struct {
	PlayerID  string `json:"player_id"`
	PlayerKey string `json:"player_key"`
	IssuedAt  string `json:"issued_at"`
}

type VerifyRequest struct {
	PlayerID  string
	PlayerKey string
}

// RegisterUseCase creates a credential and seeds a fresh save in one
// transaction.
type RegisterUseCase struct {
	Credentials ports.CredentialRepository
	Saves       ports.SaveRepository
	TxManager   ports.TxManager
	Balance     economy.Balance
	// HashCost is the bcrypt cost; zero means bcrypt.DefaultCost.
	HashCost int
	Now      func() time.Time
}

type VerifyUseCase struct {
	Credentials ports.CredentialRepository
}

func (u RegisterUseCase) Execute(ctx context.Context, _ RegisterRequest) (RegisterResponse, error) {
	if u.Credentials == nil || u.Saves == nil || u.TxManager == nil {
		return RegisterResponse{}, ErrInvalidRequest
	}
	nowFn := u.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	now := nowFn().UTC()
	cost := u.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	for i := 0; i < 3; i++ {
		playerID := "ply_" + uuid.NewString()
		playerKey, err := randomToken(32)
		if err != nil {
			return RegisterResponse{}, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(playerKey), cost)
		if err != nil {
			return RegisterResponse{}, err
		}

		err = u.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
			if err := u.Credentials.Create(txCtx, ports.CredentialRecord{
				PlayerID:  playerID,
				KeyHash:   hash,
				Status:    CredentialStatusActive,
				CreatedAt: now,
			}); err != nil {
				return err
			}
			seed := economy.NewGame(u.Balance, now)
			return u.Saves.SaveWithVersion(txCtx, ports.SaveRecord{
				PlayerID:  playerID,
				Snapshot:  seed.Snapshot(),
				Version:   1,
				UpdatedAt: now,
			}, 0)
		})
		if errors.Is(err, ports.ErrConflict) {
			continue
		}
		if err != nil {
			return RegisterResponse{}, err
		}
		return RegisterResponse{
			PlayerID:  playerID,
			PlayerKey: playerKey,
			IssuedAt:  now.Format(time.RFC3339),
		}, nil
	}

	return RegisterResponse{}, ports.ErrConflict
}

func (u VerifyUseCase) Execute(ctx context.Context, req VerifyRequest) error {
	req.PlayerID = strings.TrimSpace(req.PlayerID)
	req.PlayerKey = strings.TrimSpace(req.PlayerKey)
	if req.PlayerID == "" || req.PlayerKey == "" || u.Credentials == nil {
		return ErrInvalidRequest
	}

	cred, err := u.Credentials.GetByPlayerID(ctx, req.PlayerID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}
	if cred.Status != CredentialStatusActive {
		return ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword(cred.KeyHash, []byte(req.PlayerKey)) != nil {
		return ErrInvalidCredentials
	}
	return nil
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
