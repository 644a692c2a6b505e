package progression

const (
	// TierThreshold is the number of raw points needed to convert a maxed base
	// attribute into one tier.
	TierThreshold = 100
	// TierResetBase is the visible base value after a tier upgrade.
	TierResetBase = 10

	ParagonLevelRequirement  = 100
	PrestigeLevelRequirement = 500
)

// TierProgress is the instruction produced by CalculateStatTierProgress. The
// caller applies it to storage.
type TierProgress struct {
	// Upgrade is true when the attribute gains a tier.
	Upgrade bool
	// NewBase is the visible base value to store.
	NewBase int
	// TierDelta is the tier increment to apply (0 or 1).
	TierDelta int
}

// CalculateStatTierProgress decides what happens when pointsAvailable raw
// points are spent on an attribute whose visible base is currentBase.
//
// Postcondition: when currentBase >= 100 and pointsAvailable >= 100 the result
// is an upgrade with NewBase == 10 and TierDelta == 1; otherwise NewBase is
// min(currentBase + pointsAvailable, 100) and TierDelta is 0.
func CalculateStatTierProgress(currentBase, pointsAvailable int) TierProgress {
	if currentBase >= BaseStatCap && pointsAvailable >= TierThreshold {
		return TierProgress{Upgrade: true, NewBase: TierResetBase, TierDelta: 1}
	}
	return TierProgress{NewBase: min(currentBase+max(pointsAvailable, 0), BaseStatCap)}
}
