package data

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// RecipeIngredient is one material requirement of a recipe.
type RecipeIngredient struct {
	ItemID   string `yaml:"item_id"`
	Quantity int    `yaml:"quantity"`
}

// AffixDef is one entry of a recipe's affix pool.
type AffixDef struct {
	Stat   AffixStat `yaml:"stat"`
	Prefix string    `yaml:"prefix"`
	Weight float64   `yaml:"weight"`
	Min    float64   `yaml:"min"`
	Max    float64   `yaml:"max"`
}

// RecipeDef is a crafting recipe template.
type RecipeDef struct {
	RecipeID     string             `yaml:"recipe_id"`
	ResultItemID string             `yaml:"result_item_id"`
	Ingredients  []RecipeIngredient `yaml:"ingredients"`
	AffixPool    []AffixDef         `yaml:"affix_pool"`
}

func (d *RecipeDef) validate() error {
	if d.RecipeID == "" {
		return fmt.Errorf("missing recipe_id")
	}
	if d.ResultItemID == "" {
		return fmt.Errorf("missing result_item_id")
	}
	if len(d.Ingredients) == 0 {
		return fmt.Errorf("no ingredients")
	}
	for _, ing := range d.Ingredients {
		if ing.ItemID == "" || ing.Quantity <= 0 {
			return fmt.Errorf("bad ingredient %q x%d", ing.ItemID, ing.Quantity)
		}
	}
	for _, a := range d.AffixPool {
		if !IsAffixStat(a.Stat) {
			return fmt.Errorf("bad affix stat %q", a.Stat)
		}
		if a.Weight <= 0 || a.Max < a.Min {
			return fmt.Errorf("bad affix range for %q", a.Stat)
		}
	}
	return nil
}

type recipeListFile struct {
	Recipes []RecipeDef `yaml:"recipes"`
}

// RecipeTable holds all recipes indexed by RecipeID.
type RecipeTable struct {
	recipes map[string]*RecipeDef
}

// NewRecipeTable builds a table from in-memory definitions.
func NewRecipeTable(defs ...RecipeDef) *RecipeTable {
	t := &RecipeTable{recipes: make(map[string]*RecipeDef, len(defs))}
	for i := range defs {
		t.recipes[defs[i].RecipeID] = &defs[i]
	}
	return t
}

// Get returns a copy of the recipe, or nil if not found.
func (t *RecipeTable) Get(recipeID string) *RecipeDef {
	d, ok := t.recipes[recipeID]
	if !ok {
		return nil
	}
	cp := *d
	cp.Ingredients = append([]RecipeIngredient(nil), d.Ingredients...)
	cp.AffixPool = append([]AffixDef(nil), d.AffixPool...)
	return &cp
}

// Count returns the number of loaded recipes.
func (t *RecipeTable) Count() int {
	return len(t.recipes)
}

// LoadRecipeTable loads crafting recipes from a YAML file.
func LoadRecipeTable(path string, log *zap.Logger) (*RecipeTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recipes: %w", err)
	}
	var f recipeListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse recipes: %w", err)
	}
	t := &RecipeTable{recipes: make(map[string]*RecipeDef, len(f.Recipes))}
	for i := range f.Recipes {
		d := &f.Recipes[i]
		if err := d.validate(); err != nil {
			log.Warn("dropped invalid recipe entry", zap.String("recipe_id", d.RecipeID), zap.Error(err))
			continue
		}
		t.recipes[d.RecipeID] = d
	}
	return t, nil
}
