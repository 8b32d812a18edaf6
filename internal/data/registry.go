package data

import (
	"fmt"

	"go.uber.org/zap"
)

// Registry aggregates the static content tables. Initialize must run
// before any accessor; using an uninitialized registry is a programmer
// error, reported immediately.
type Registry struct {
	items     *ItemTable
	recipes   *RecipeTable
	nodes     *NodeTable
	events    *EventTable
	mandates  *MandateTable
	buildings *BuildingTable

	initialized bool
}

// Paths names the content files a Registry is loaded from.
type Paths struct {
	Items     string
	Recipes   string
	Nodes     string
	Events    string
	Mandates  string
	Buildings string
}

// DefaultPaths returns the content layout under a data directory root.
func DefaultPaths(root string) Paths {
	return Paths{
		Items:     root + "/item_list.yaml",
		Recipes:   root + "/recipe_list.yaml",
		Nodes:     root + "/map_node_list.yaml",
		Events:    root + "/event_list.yaml",
		Mandates:  root + "/mandate_list.yaml",
		Buildings: root + "/building_list.yaml",
	}
}

// NewRegistry returns an empty, uninitialized registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Initialize loads every content collection. A file-level failure
// (missing file, bad YAML) aborts; individual invalid entries inside a
// file are dropped with warnings by the table loaders.
func (r *Registry) Initialize(p Paths, log *zap.Logger) error {
	items, err := LoadItemTable(p.Items, log)
	if err != nil {
		return err
	}
	recipes, err := LoadRecipeTable(p.Recipes, log)
	if err != nil {
		return err
	}
	nodes, err := LoadNodeTable(p.Nodes, log)
	if err != nil {
		return err
	}
	events, err := LoadEventTable(p.Events, log)
	if err != nil {
		return err
	}
	mandates, err := LoadMandateTable(p.Mandates, log)
	if err != nil {
		return err
	}
	buildings, err := LoadBuildingTable(p.Buildings, log)
	if err != nil {
		return err
	}

	r.items = items
	r.recipes = recipes
	r.nodes = nodes
	r.events = events
	r.mandates = mandates
	r.buildings = buildings
	r.initialized = true

	log.Info("content registry initialized",
		zap.Int("items", items.Count()),
		zap.Int("recipes", recipes.Count()),
		zap.Int("map_nodes", nodes.Count()),
		zap.Int("events", events.Count()),
		zap.Int("mandates", mandates.Count()),
		zap.Int("buildings", buildings.Count()),
	)
	return nil
}

// InitializeFromTables wires pre-built tables directly. Tests use this
// to avoid touching the filesystem.
func (r *Registry) InitializeFromTables(items *ItemTable, recipes *RecipeTable, nodes *NodeTable, events *EventTable, mandates *MandateTable, buildings *BuildingTable) {
	r.items = items
	r.recipes = recipes
	r.nodes = nodes
	r.events = events
	r.mandates = mandates
	r.buildings = buildings
	r.initialized = true
}

// ErrUninitialized is returned when a registry accessor runs before
// Initialize.
var ErrUninitialized = fmt.Errorf("data registry used before initialization")

func (r *Registry) ensure() error {
	if !r.initialized {
		return ErrUninitialized
	}
	return nil
}

func (r *Registry) Items() (*ItemTable, error) {
	if err := r.ensure(); err != nil {
		return nil, err
	}
	return r.items, nil
}

func (r *Registry) Recipes() (*RecipeTable, error) {
	if err := r.ensure(); err != nil {
		return nil, err
	}
	return r.recipes, nil
}

func (r *Registry) Nodes() (*NodeTable, error) {
	if err := r.ensure(); err != nil {
		return nil, err
	}
	return r.nodes, nil
}

func (r *Registry) Events() (*EventTable, error) {
	if err := r.ensure(); err != nil {
		return nil, err
	}
	return r.events, nil
}

func (r *Registry) Mandates() (*MandateTable, error) {
	if err := r.ensure(); err != nil {
		return nil, err
	}
	return r.mandates, nil
}

func (r *Registry) Buildings() (*BuildingTable, error) {
	if err := r.ensure(); err != nil {
		return nil, err
	}
	return r.buildings, nil
}
