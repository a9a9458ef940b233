package stateview

import (
	"testing"

	"sodaclicker/internal/domain/amount"
	"sodaclicker/internal/domain/economy"
)

func offer(id economy.UpgradeID, cost int64, affordable bool) economy.Offer {
	return economy.Offer{Upgrade: id, Cost: amount.FromInt(cost), Affordable: affordable}
}

func TestEstimateWaits_SkipsAffordableAndRoundsUp(t *testing.T) {
	offers := []economy.Offer{
		offer(economy.UpgradeStraw, 10, true),
		offer(economy.UpgradeCup, 20, false),
		offer(economy.UpgradeLevelUp, 3000, false),
	}
	got := EstimateWaits(offers, amount.FromInt(15), amount.FromFloat(0.4))
	if len(got) != 2 {
		t.Fatalf("expected 2 waits, got %+v", got)
	}
	if got[0].Upgrade != economy.UpgradeCup || got[0].Deficit.Int64() != 5 || got[0].Seconds != 13 {
		t.Fatalf("unexpected cup wait: %+v", got[0])
	}
	if got[1].Seconds != 7463 {
		t.Fatalf("expected ceil(2985/0.4)=7463, got %d", got[1].Seconds)
	}
}

func TestEstimateWaits_NoProductionNeverArrives(t *testing.T) {
	got := EstimateWaits([]economy.Offer{offer(economy.UpgradeCup, 20, false)}, amount.Zero, amount.Zero)
	if len(got) != 1 || !got[0].Never || got[0].Seconds != -1 {
		t.Fatalf("expected never, got %+v", got)
	}
}

func TestEstimateWaits_CapsHugeDeficits(t *testing.T) {
	huge := economy.Offer{Upgrade: economy.UpgradeStraw, Cost: amount.MustParse("1e40"), Affordable: false}
	got := EstimateWaits([]economy.Offer{huge}, amount.Zero, amount.FromInt(1))
	if got[0].Seconds != MaxWaitSeconds {
		t.Fatalf("expected cap, got %d", got[0].Seconds)
	}
}

func TestEstimateWaits_SkipsMaxedOffers(t *testing.T) {
	maxed := economy.Offer{Upgrade: economy.UpgradeLevelUp, Cost: amount.FromInt(3000), Maxed: true}
	if got := EstimateWaits([]economy.Offer{maxed}, amount.Zero, amount.One); len(got) != 0 {
		t.Fatalf("expected no wait for a maxed offer, got %+v", got)
	}
}
