package sim

import (
	"fmt"

	"github.com/dragonfell/server/internal/data"
	"github.com/dragonfell/server/internal/rng"
	"github.com/dragonfell/server/internal/scripting"
)

// 品質基礎權重與數值倍率。權重依鍛造等級向高階傾斜（見 rollQuality）。
var qualityWeights = map[data.Quality]float64{
	data.QualityCrude:      40,
	data.QualityStandard:   35,
	data.QualityFine:       20,
	data.QualityMasterwork: 5,
}

var qualityValueMult = map[data.Quality]float64{
	data.QualityCrude:      0.8,
	data.QualityStandard:   1.0,
	data.QualityFine:       1.35,
	data.QualityMasterwork: 1.8,
}

// 品質對稀有度升階擲骰的加成。
var qualityRarityBonus = map[data.Quality]float64{
	data.QualityMasterwork: 0.25,
	data.QualityFine:       0.10,
}

// 各品質的基礎附魔條數（鍛造等級每 4 級再 +1）。
var affixBaseCount = map[data.Quality]int{
	data.QualityCrude:      0,
	data.QualityStandard:   0,
	data.QualityFine:       1,
	data.QualityMasterwork: 2,
}

var qualityPrefix = map[data.Quality]string{
	data.QualityCrude:      "Crude",
	data.QualityStandard:   "",
	data.QualityFine:       "Fine",
	data.QualityMasterwork: "Masterwork",
}

// Crafter 解析製作請求：依配方與鍛造等級擲品質/稀有度/附魔。
type Crafter struct {
	items   *data.ItemTable
	recipes *data.RecipeTable
	tuning  scripting.Tuning
}

func NewCrafter(items *data.ItemTable, recipes *data.RecipeTable, tuning scripting.Tuning) *Crafter {
	return &Crafter{items: items, recipes: recipes, tuning: tuning}
}

// Craft 執行一次製作。configID 查無配方或基底物品屬於內容資料錯誤，
// 以 error 回報並中止；材料不足同樣回 error，呼叫端必須先以
// ConsumeMaterials 保留材料。
func (c *Crafter) Craft(recipeID string, materials []MaterialRequirement, smithLevel int, r *rng.Source) (*InventoryItem, error) {
	recipe := c.recipes.Get(recipeID)
	if recipe == nil {
		return nil, fmt.Errorf("craft: unknown recipe %q", recipeID)
	}
	base := c.items.Get(recipe.ResultItemID)
	if base == nil {
		return nil, fmt.Errorf("craft: recipe %q references unknown item %q", recipeID, recipe.ResultItemID)
	}

	// 重驗材料涵蓋配方需求（應已由呼叫端保留）。
	provided := make(map[string]int, len(materials))
	for _, m := range materials {
		provided[m.BaseItemID] += m.Quantity
	}
	for _, ing := range recipe.Ingredients {
		if provided[ing.ItemID] < ing.Quantity {
			return nil, fmt.Errorf("craft: recipe %q missing ingredient %q (%d < %d)",
				recipeID, ing.ItemID, provided[ing.ItemID], ing.Quantity)
		}
	}

	quality := c.rollQuality(smithLevel, r)
	rarity := c.rollRarity(base.Rarity, quality, smithLevel, r)
	affixes := c.rollAffixes(recipe.AffixPool, quality, smithLevel, r)

	name := base.Name
	if p := qualityPrefix[quality]; p != "" {
		name = p + " " + name
	}
	if len(affixes) > 0 && affixes[0].Prefix != "" {
		name = affixes[0].Prefix + " " + name
	}

	return &InventoryItem{
		BaseItemID: base.ItemID,
		Name:       name,
		Kind:       data.KindEquipment,
		Slot:       base.Slot,
		Quantity:   1,
		Quality:    quality,
		Rarity:     rarity,
		Affixes:    affixes,
		Value:      base.Value * qualityValueMult[quality],
	}, nil
}

// rollQuality 依權重擲品質；鍛造等級對越高階的品質給越大的權重加成，
// 偏向但不保證高品質。
func (c *Crafter) rollQuality(smithLevel int, r *rng.Source) data.Quality {
	bonus := float64(smithLevel)
	total := 0.0
	weights := make([]float64, len(data.Qualities))
	for i, q := range data.Qualities {
		w := qualityWeights[q] * (1 + bonus*(float64(i)/4)*0.15)
		weights[i] = w
		total += w
	}
	roll := r.Next() * total
	for i, w := range weights {
		roll -= w
		if roll < 0 {
			return data.Qualities[i]
		}
	}
	return data.Qualities[len(data.Qualities)-1]
}

// rollRarity 從基底稀有度起算，對每個升階門檻各擲一次，成功即升一階，
// 上限 legendary。門檻與下限來自平衡調校資料。
func (c *Crafter) rollRarity(baseRarity data.Rarity, quality data.Quality, smithLevel int, r *rng.Source) data.Rarity {
	chance := qualityRarityBonus[quality]
	smith := float64(smithLevel) * 0.05
	if smith > c.tuning.SmithRarityCap {
		smith = c.tuning.SmithRarityCap
	}
	chance += smith

	rarity := baseRarity
	for _, threshold := range c.tuning.RarityThresholds {
		p := chance - threshold
		if p < c.tuning.RarityFloor {
			p = c.tuning.RarityFloor
		}
		if r.Next() < p {
			rarity = data.NextRarity(rarity)
		}
	}
	return rarity
}

// rollAffixes 從配方附魔池加權抽樣（不放回），數值在 [min,max] 均勻。
func (c *Crafter) rollAffixes(pool []data.AffixDef, quality data.Quality, smithLevel int, r *rng.Source) []Affix {
	count := affixBaseCount[quality] + smithLevel/4
	if count > len(pool) {
		count = len(pool)
	}
	if count <= 0 {
		return nil
	}

	remaining := append([]data.AffixDef(nil), pool...)
	out := make([]Affix, 0, count)
	for len(out) < count && len(remaining) > 0 {
		total := 0.0
		for _, a := range remaining {
			total += a.Weight
		}
		roll := r.Next() * total
		idx := len(remaining) - 1
		for i, a := range remaining {
			roll -= a.Weight
			if roll < 0 {
				idx = i
				break
			}
		}
		picked := remaining[idx]
		out = append(out, Affix{
			Stat:      picked.Stat,
			Prefix:    picked.Prefix,
			Magnitude: r.Float(picked.Min, picked.Max),
		})
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}
	return out
}
