package stateview

import (
	"math"

	"sodaclicker/internal/domain/amount"
	"sodaclicker/internal/domain/economy"
)

// MaxWaitSeconds caps estimates so absurd deficits still fit in JSON ints.
const MaxWaitSeconds = int64(math.MaxInt32)

type AffordWait struct {
	Upgrade economy.UpgradeID `json:"upgrade"`
	Deficit amount.Amount     `json:"deficit"`
	// Seconds is how long passive drinking alone needs to cover Deficit.
	Seconds int64 `json:"seconds"`
	// Never is set when nothing is produced passively.
	Never bool `json:"never,omitempty"`
}

// EstimateWaits reports, for every offer that is not affordable yet, how far
// short the player is and how long sipsPerSecond takes to close the gap.
// Clicks are ignored.
func EstimateWaits(offers []economy.Offer, sips, sipsPerSecond amount.Amount) []AffordWait {
	out := make([]AffordWait, 0, len(offers))
	for _, o := range offers {
		if o.Affordable || o.Maxed {
			continue
		}
		deficit := o.Cost.Sub(sips)
		if deficit.Sign() <= 0 {
			continue
		}
		w := AffordWait{Upgrade: o.Upgrade, Deficit: deficit}
		if sipsPerSecond.Sign() <= 0 {
			w.Never = true
			w.Seconds = -1
		} else {
			w.Seconds = ceilSeconds(deficit.Div(sipsPerSecond).Float64())
		}
		out = append(out, w)
	}
	return out
}

func ceilSeconds(v float64) int64 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if math.IsInf(v, 1) || v >= float64(MaxWaitSeconds) {
		return MaxWaitSeconds
	}
	return int64(math.Ceil(v))
}
