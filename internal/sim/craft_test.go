package sim

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dragonfell/server/internal/data"
	"github.com/dragonfell/server/internal/rng"
	"github.com/dragonfell/server/internal/scripting"
)

func testCrafter() *Crafter {
	items := data.NewItemTable(
		data.ItemDef{ItemID: "arming_sword", Name: "Arming Sword", Kind: data.KindEquipment,
			Slot: data.SlotWeapon, Rarity: data.RarityCommon, Value: 40},
		data.ItemDef{ItemID: "iron_ingot", Name: "Iron Ingot", Kind: data.KindMaterial,
			Rarity: data.RarityCommon, Value: 8},
	)
	recipes := data.NewRecipeTable(
		data.RecipeDef{
			RecipeID:     "forge_arming_sword",
			ResultItemID: "arming_sword",
			Ingredients:  []data.RecipeIngredient{{ItemID: "iron_ingot", Quantity: 3}},
			AffixPool: []data.AffixDef{
				{Stat: data.AffixStrength, Prefix: "Keen", Weight: 3, Min: 2, Max: 6},
				{Stat: data.AffixVitality, Prefix: "Stalwart", Weight: 2, Min: 2, Max: 5},
			},
		},
		data.RecipeDef{RecipeID: "bad_recipe", ResultItemID: "no_such_item"},
	)
	return NewCrafter(items, recipes, scripting.DefaultTuning())
}

var swordMats = []MaterialRequirement{{BaseItemID: "iron_ingot", Quantity: 3}}

func TestCraftUnknownRecipe(t *testing.T) {
	c := testCrafter()
	_, err := c.Craft("no_such_recipe", swordMats, 0, rng.New(1))
	require.Error(t, err)
}

func TestCraftDanglingResultItem(t *testing.T) {
	c := testCrafter()
	_, err := c.Craft("bad_recipe", nil, 0, rng.New(1))
	require.Error(t, err)
}

func TestCraftInsufficientMaterials(t *testing.T) {
	c := testCrafter()
	_, err := c.Craft("forge_arming_sword",
		[]MaterialRequirement{{BaseItemID: "iron_ingot", Quantity: 2}}, 0, rng.New(1))
	require.Error(t, err)
}

func TestCraftDeterministic(t *testing.T) {
	c := testCrafter()
	a, err := c.Craft("forge_arming_sword", swordMats, 3, rng.New(99))
	require.NoError(t, err)
	b, err := c.Craft("forge_arming_sword", swordMats, 3, rng.New(99))
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestCraftResultShape(t *testing.T) {
	c := testCrafter()
	for seed := int64(1); seed <= 200; seed++ {
		item, err := c.Craft("forge_arming_sword", swordMats, 2, rng.New(seed))
		require.NoError(t, err)
		require.Equal(t, data.KindEquipment, item.Kind)
		require.Equal(t, data.SlotWeapon, item.Slot)
		require.Equal(t, 1, item.Quantity)
		require.GreaterOrEqual(t, data.QualityIndex(item.Quality), 0)
		require.GreaterOrEqual(t, data.RarityIndex(item.Rarity), 0)
		require.InDelta(t, 40*qualityValueMult[item.Quality], item.Value, 1e-9)
		for _, a := range item.Affixes {
			require.True(t, a.Magnitude >= 2 && a.Magnitude < 6.0001)
		}
	}
}

func TestSmithLevelShiftsQuality(t *testing.T) {
	c := testCrafter()
	countMasterwork := func(smith int) int {
		n := 0
		for seed := int64(1); seed <= 400; seed++ {
			item, err := c.Craft("forge_arming_sword", swordMats, smith, rng.New(seed))
			require.NoError(t, err)
			if item.Quality == data.QualityMasterwork {
				n++
			}
		}
		return n
	}
	low := countMasterwork(0)
	high := countMasterwork(10)
	require.Greater(t, high, low, "higher smith level should yield more masterwork items")
}

func TestQualityDistributionAtSmithZero(t *testing.T) {
	c := testCrafter()
	r := rng.New(20260830)
	const n = 4000

	counts := map[data.Quality]int{}
	for i := 0; i < n; i++ {
		item, err := c.Craft("forge_arming_sword", swordMats, 0, r)
		require.NoError(t, err)
		counts[item.Quality]++
	}

	// 無鍛造加成時品質依基礎權重 40/35/20/5 分布。
	expected := map[data.Quality]float64{
		data.QualityCrude:      0.40,
		data.QualityStandard:   0.35,
		data.QualityFine:       0.20,
		data.QualityMasterwork: 0.05,
	}
	for q, want := range expected {
		got := float64(counts[q]) / n
		require.InDelta(t, want, got, 0.03, "quality %s", q)
	}
}

func TestHighSmithLevelGrantsAffixes(t *testing.T) {
	c := testCrafter()
	// smithLevel 8 gives +2 affixes regardless of quality, and the pool
	// holds two entries, so every craft carries both without repeats.
	item, err := c.Craft("forge_arming_sword", swordMats, 8, rng.New(5))
	require.NoError(t, err)
	require.Len(t, item.Affixes, 2)
	require.NotEqual(t, item.Affixes[0].Stat, item.Affixes[1].Stat)
}

func TestCraftNamePrefixes(t *testing.T) {
	c := testCrafter()
	for seed := int64(1); seed <= 100; seed++ {
		item, err := c.Craft("forge_arming_sword", swordMats, 0, rng.New(seed))
		require.NoError(t, err)
		require.True(t, strings.HasSuffix(item.Name, "Arming Sword"), "name %q", item.Name)
		if p := qualityPrefix[item.Quality]; p != "" {
			require.Contains(t, item.Name, p)
		}
	}
}
