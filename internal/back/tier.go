package back

// Tier is a coarse display label derived from the rating. It is never stored:
// deriving it on every read keeps it from drifting out of sync with Rating.
type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
	TierDiamond  Tier = "diamond"
)

const (
	tierSilverMinRating   = 1100
	tierGoldMinRating     = 1300
	tierPlatinumMinRating = 1500
	tierDiamondMinRating  = 1700
)

func TierFromRating(rating int) Tier {
	switch {
	case rating >= tierDiamondMinRating:
		return TierDiamond
	case rating >= tierPlatinumMinRating:
		return TierPlatinum
	case rating >= tierGoldMinRating:
		return TierGold
	case rating >= tierSilverMinRating:
		return TierSilver
	default:
		return TierBronze
	}
}

// Tiers lists every tier in ascending order of prestige.
func Tiers() []Tier {
	return []Tier{TierBronze, TierSilver, TierGold, TierPlatinum, TierDiamond}
}

// tierRatingRange returns the [min, max) rating bounds of a tier, max being
// -1 for the unbounded top tier.
func tierRatingRange(tier Tier) (min, max int) {
	switch tier {
	case TierBronze:
		return 0, tierSilverMinRating
	case TierSilver:
		return tierSilverMinRating, tierGoldMinRating
	case TierGold:
		return tierGoldMinRating, tierPlatinumMinRating
	case TierPlatinum:
		return tierPlatinumMinRating, tierDiamondMinRating
	case TierDiamond:
		return tierDiamondMinRating, -1
	default:
		return 0, -1
	}
}
