package gormrepo

import (
	"context"
	"encoding/json"
	"errors"

	"sodaclicker/internal/adapter/repo/gorm/model"
	"sodaclicker/internal/app/ports"
	"sodaclicker/internal/domain/economy"

	"gorm.io/gorm"
)

type PurchaseExecutionRepo struct {
	db *gorm.DB
}

func NewPurchaseExecutionRepo(db *gorm.DB) PurchaseExecutionRepo {
	return PurchaseExecutionRepo{db: db}
}

func (r PurchaseExecutionRepo) GetByIdempotencyKey(ctx context.Context, playerID, key string) (*ports.PurchaseExecutionRecord, error) {
	var m model.PurchaseExecution
	err := getDBFromCtx(ctx, r.db).
		Where(&model.PurchaseExecution{PlayerID: playerID, IdempotencyKey: key}).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	var result economy.PurchaseResult
	_ = json.Unmarshal(m.Result, &result)
	return &ports.PurchaseExecutionRecord{
		PlayerID:       m.PlayerID,
		IdempotencyKey: m.IdempotencyKey,
		Upgrade:        m.Upgrade,
		Result:         result,
		AppliedAt:      m.AppliedAt,
	}, nil
}

func (r PurchaseExecutionRepo) SaveExecution(ctx context.Context, execution ports.PurchaseExecutionRecord) error {
	resultJSON, err := json.Marshal(execution.Result)
	if err != nil {
		return err
	}
	m := model.PurchaseExecution{
		PlayerID:       execution.PlayerID,
		IdempotencyKey: execution.IdempotencyKey,
		Upgrade:        execution.Upgrade,
		Result:         resultJSON,
		AppliedAt:      execution.AppliedAt,
	}
	if err := getDBFromCtx(ctx, r.db).Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			return ports.ErrConflict
		}
		return err
	}
	return nil
}
