package data

// Resource keys are the content vocabulary shared by costs, event
// effects, and the resource ledger. Exactly four; content referencing
// anything else is rejected at load.
const (
	ResourceGold   = "gold"
	ResourceFood   = "food"
	ResourceFame   = "fame"
	ResourceMorale = "morale"
)

// ResourceKeys lists all valid resource keys in canonical order.
var ResourceKeys = []string{ResourceGold, ResourceFood, ResourceFame, ResourceMorale}

// IsResourceKey reports whether s names one of the four resources.
func IsResourceKey(s string) bool {
	switch s {
	case ResourceGold, ResourceFood, ResourceFame, ResourceMorale:
		return true
	}
	return false
}

// Quality tiers for crafted equipment, worst to best.
type Quality string

const (
	QualityCrude      Quality = "crude"
	QualityStandard   Quality = "standard"
	QualityFine       Quality = "fine"
	QualityMasterwork Quality = "masterwork"
)

// Qualities lists tiers in ascending order; index = tier rank.
var Qualities = []Quality{QualityCrude, QualityStandard, QualityFine, QualityMasterwork}

// QualityIndex returns the tier rank of q, or -1 if unknown.
func QualityIndex(q Quality) int {
	for i, v := range Qualities {
		if v == q {
			return i
		}
	}
	return -1
}

// Rarity tiers for items, ascending.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

var Rarities = []Rarity{RarityCommon, RarityUncommon, RarityRare, RarityEpic, RarityLegendary}

// RarityIndex returns the tier rank of r, or -1 if unknown.
func RarityIndex(r Rarity) int {
	for i, v := range Rarities {
		if v == r {
			return i
		}
	}
	return -1
}

// NextRarity returns the tier above r, capped at legendary.
func NextRarity(r Rarity) Rarity {
	i := RarityIndex(r)
	if i < 0 || i >= len(Rarities)-1 {
		return r
	}
	return Rarities[i+1]
}

// AffixStat names a stat an equipment affix can carry.
type AffixStat string

const (
	AffixStrength  AffixStat = "strength"
	AffixIntellect AffixStat = "intellect"
	AffixVitality  AffixStat = "vitality"
)

// IsAffixStat reports whether s is a known affix stat.
func IsAffixStat(s AffixStat) bool {
	switch s {
	case AffixStrength, AffixIntellect, AffixVitality:
		return true
	}
	return false
}
