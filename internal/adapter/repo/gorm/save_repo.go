package gormrepo

import (
	"context"
	"errors"

	"sodaclicker/internal/adapter/repo/gorm/model"
	"sodaclicker/internal/app/ports"
	"sodaclicker/internal/domain/amount"
	"sodaclicker/internal/domain/economy"

	"gorm.io/gorm"
)

type SaveRepo struct {
	db *gorm.DB
}

func NewSaveRepo(db *gorm.DB) SaveRepo {
	return SaveRepo{db: db}
}

func (r SaveRepo) GetByPlayerID(ctx context.Context, playerID string) (ports.SaveRecord, error) {
	var m model.PlayerSave
	if err := getDBFromCtx(ctx, r.db).Where("player_id = ?", playerID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.SaveRecord{}, ports.ErrNotFound
		}
		return ports.SaveRecord{}, err
	}
	return ports.SaveRecord{
		PlayerID:  m.PlayerID,
		Snapshot:  toSnapshot(m),
		Version:   m.Version,
		UpdatedAt: m.UpdatedAt,
	}, nil
}

func (r SaveRepo) SaveWithVersion(ctx context.Context, rec ports.SaveRecord, expectedVersion int64) error {
	db := getDBFromCtx(ctx, r.db)
	m := toModel(rec)
	if expectedVersion == 0 {
		if err := db.Create(&m).Error; err != nil {
			if isUniqueViolation(err) {
				return ports.ErrConflict
			}
			return err
		}
		return nil
	}

	res := db.Model(&model.PlayerSave{}).
		Where("player_id = ? AND version = ?", rec.PlayerID, expectedVersion).
		Select("*").Omit("player_id").
		Updates(&m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrConflict
	}
	return nil
}

func toModel(rec ports.SaveRecord) model.PlayerSave {
	s := rec.Snapshot
	return model.PlayerSave{
		PlayerID:                rec.PlayerID,
		SchemaVersion:           int32(s.Version),
		Sips:                    s.Sips.String(),
		Straws:                  s.Straws.String(),
		Cups:                    s.Cups.String(),
		Suctions:                s.Suctions.String(),
		FasterDrinks:            s.FasterDrinks.String(),
		WiderStraws:             s.WiderStraws.String(),
		BetterCups:              s.BetterCups.String(),
		CriticalClickChance:     s.CriticalClickChance.String(),
		CriticalClickMultiplier: s.CriticalClickMultiplier.String(),
		CriticalClicks:          s.CriticalClicks.String(),
		CriticalClickUpCounter:  s.CriticalClickUpCounter.String(),
		StrawUpCounter:          s.StrawUpCounter.String(),
		CupUpCounter:            s.CupUpCounter.String(),
		SuctionClickBonus:       s.SuctionClickBonus.String(),
		Level:                   s.Level.String(),
		TotalSipsEarned:         s.TotalSipsEarned.String(),
		TotalClicks:             s.TotalClicks.String(),
		TotalCriticalClicks:     s.TotalCriticalClicks.String(),
		HighestSipsPerSecond:    s.HighestSipsPerSecond.String(),
		GameStartDateMs:         int64(s.GameStartDate),
		LastClickTimeMs:         int64(s.LastClickTime),
		LastDrinkTimeMs:         int64(s.LastDrinkTime),
		LastSaveTimeMs:          int64(s.LastSaveTime),
		DrinkProgress:           s.DrinkProgress.String(),
		AutosaveCounter:         int32(s.AutosaveCounter),
		Version:                 rec.Version,
		UpdatedAt:               rec.UpdatedAt,
	}
}

// toSnapshot is lenient like every other save reader: unparsable text reads as 0.
func toSnapshot(m model.PlayerSave) economy.Snapshot {
	return economy.Snapshot{
		Version:                 int(m.SchemaVersion),
		Sips:                    amount.FromString(m.Sips),
		Straws:                  amount.FromString(m.Straws),
		Cups:                    amount.FromString(m.Cups),
		Suctions:                amount.FromString(m.Suctions),
		FasterDrinks:            amount.FromString(m.FasterDrinks),
		WiderStraws:             amount.FromString(m.WiderStraws),
		BetterCups:              amount.FromString(m.BetterCups),
		CriticalClickChance:     amount.FromString(m.CriticalClickChance),
		CriticalClickMultiplier: amount.FromString(m.CriticalClickMultiplier),
		CriticalClicks:          amount.FromString(m.CriticalClicks),
		CriticalClickUpCounter:  amount.FromString(m.CriticalClickUpCounter),
		StrawUpCounter:          amount.FromString(m.StrawUpCounter),
		CupUpCounter:            amount.FromString(m.CupUpCounter),
		SuctionClickBonus:       amount.FromString(m.SuctionClickBonus),
		Level:                   amount.FromString(m.Level),
		TotalSipsEarned:         amount.FromString(m.TotalSipsEarned),
		TotalClicks:             amount.FromString(m.TotalClicks),
		TotalCriticalClicks:     amount.FromString(m.TotalCriticalClicks),
		HighestSipsPerSecond:    amount.FromString(m.HighestSipsPerSecond),
		GameStartDate:           economy.Millis(m.GameStartDateMs),
		LastClickTime:           economy.Millis(m.LastClickTimeMs),
		LastDrinkTime:           economy.Millis(m.LastDrinkTimeMs),
		LastSaveTime:            economy.Millis(m.LastSaveTimeMs),
		DrinkProgress:           amount.FromString(m.DrinkProgress),
		AutosaveCounter:         int(m.AutosaveCounter),
	}
}
