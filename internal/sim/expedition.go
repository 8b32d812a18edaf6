package sim

import (
	"math"

	"go.uber.org/zap"

	"github.com/dragonfell/server/internal/core/event"
	"github.com/dragonfell/server/internal/data"
	"github.com/dragonfell/server/internal/rng"
)

// DragonIntelMax 是龍穴情報的進度上限。
const DragonIntelMax = 999

// DragonIntel 是龍穴解鎖進度。解鎖為單向：一旦達標永不回鎖。
type DragonIntel struct {
	Current      int
	Threshold    int
	LairUnlocked bool
}

// ExpeditionResult 是一次遠征的完整結果包。
type ExpeditionResult struct {
	NodeID       string
	Encounter    EncounterDefinition
	Report       BattleReport
	Script       BattleScript
	Injuries     []InjuryResult
	Fatigue      []ConditionDelta
	Loot         []*InventoryItem
	IntelGained  int
	LairUnlocked bool
}

// Orchestrator 串起一次遠征的完整管線：組遭遇、打戰鬥、回寫
// 消耗、發戰利品、累積情報。
type Orchestrator struct {
	bus       *event.Bus
	log       *zap.Logger
	nodes     *data.NodeTable
	items     *data.ItemTable
	roster    *Roster
	inventory *Inventory
	sim       *Simulator
	telemetry *Telemetry

	difficulty float64
	lootRate   float64
	intel      DragonIntel
}

func NewOrchestrator(
	bus *event.Bus,
	log *zap.Logger,
	nodes *data.NodeTable,
	items *data.ItemTable,
	roster *Roster,
	inventory *Inventory,
	sim *Simulator,
	telemetry *Telemetry,
	difficulty, lootRate float64,
	intelThreshold int,
) *Orchestrator {
	if difficulty <= 0 {
		difficulty = 1
	}
	if lootRate < 0 {
		lootRate = 0
	}
	return &Orchestrator{
		bus:        bus,
		log:        log,
		nodes:      nodes,
		items:      items,
		roster:     roster,
		inventory:  inventory,
		sim:        sim,
		telemetry:  telemetry,
		difficulty: difficulty,
		lootRate:   lootRate,
		intel:      DragonIntel{Threshold: intelThreshold},
	}
}

// Intel 回傳目前的龍穴情報進度。
func (o *Orchestrator) Intel() DragonIntel { return o.intel }

// RestoreIntel 自存檔回寫情報進度。
func (o *Orchestrator) RestoreIntel(state DragonIntel) {
	o.intel = state
	o.emitIntel()
}

// BuildEncounter 由地圖節點與種子衍生一場遭遇：戰力帶 ±25% 波動
// 再乘全域難度倍率。
func (o *Orchestrator) BuildEncounter(node *data.NodeDef, r *rng.Source) EncounterDefinition {
	volatility := 0.75 + r.Next()*0.5
	return EncounterDefinition{
		NodeID:      node.NodeID,
		Name:        node.Name,
		Biome:       node.Biome,
		Threat:      node.Threat,
		PowerRating: node.PowerRating * volatility * o.difficulty,
		EnemyCount:  r.Range(node.EnemyMin, node.EnemyMax),
		IntelChance: node.IntelChance,
		IntelMin:    node.IntelMin,
		IntelMax:    node.IntelMax,
		LootTable:   node.LootTable,
	}
}

// Run 執行一次遠征。戰利品與情報只在勝利時結算；傷勢與疲勞增量
// 合併後以單次批次回寫名冊。nodeID 未知回傳 nil。
func (o *Orchestrator) Run(nodeID string, partyIDs []int, r *rng.Source) *ExpeditionResult {
	node := o.nodes.Get(nodeID)
	if node == nil {
		o.log.Warn("unknown map node", zap.String("node_id", nodeID))
		return nil
	}

	party := make([]*KnightRecord, 0, len(partyIDs))
	for _, id := range partyIDs {
		if k := o.roster.Get(id); k != nil {
			party = append(party, k)
		}
	}

	enc := o.BuildEncounter(node, r)
	report := o.sim.Simulate(party, enc, r)
	script := BuildScript(report)
	injuries := o.sim.ApplyInjuries(party, report.DamageTaken, r)
	fatigue := o.rollFatigue(party, enc, report.Outcome, r)

	// 合併傷勢與疲勞為每騎士一筆，單次批次回寫。
	merged := make(map[int]*ConditionDelta, len(party))
	order := make([]int, 0, len(party))
	for _, inj := range injuries {
		merged[inj.KnightID] = &ConditionDelta{KnightID: inj.KnightID, InjuryDelta: inj.InjuryDelta}
		order = append(order, inj.KnightID)
	}
	for _, f := range fatigue {
		d, ok := merged[f.KnightID]
		if !ok {
			d = &ConditionDelta{KnightID: f.KnightID}
			merged[f.KnightID] = d
			order = append(order, f.KnightID)
		}
		d.FatigueDelta += f.FatigueDelta
	}
	deltas := make([]ConditionDelta, 0, len(order))
	for _, id := range order {
		deltas = append(deltas, *merged[id])
	}
	o.roster.ApplyConditionAdjustments(deltas)

	result := &ExpeditionResult{
		NodeID:    nodeID,
		Encounter: enc,
		Report:    report,
		Script:    script,
		Injuries:  injuries,
		Fatigue:   fatigue,
	}

	if report.Outcome == OutcomeVictory {
		result.Loot = o.grantLoot(enc, r)
		result.IntelGained = o.sim.MaybeGainIntel(enc, r)
		result.LairUnlocked = o.gainIntel(result.IntelGained)
	}

	lootCount := 0
	for _, it := range result.Loot {
		lootCount += it.Quantity
	}
	o.telemetry.RecordExpedition(report.Outcome, lootCount, result.IntelGained)

	o.log.Info("expedition resolved",
		zap.String("node_id", nodeID),
		zap.String("outcome", string(report.Outcome)),
		zap.Int("rounds", report.Rounds),
		zap.Int("intel_gained", result.IntelGained))
	return result
}

// rollFatigue 計算各隊員的疲勞增量：基礎值隨遭遇戰力成長，依結果
// 縮放，再由意志減免。
func (o *Orchestrator) rollFatigue(party []*KnightRecord, enc EncounterDefinition, outcome Outcome, r *rng.Source) []ConditionDelta {
	scale, ok := o.sim.tuning.FatigueOutcomeScale[string(outcome)]
	if !ok {
		scale = 1
	}
	base := 8 + enc.PowerRating*0.12
	out := make([]ConditionDelta, 0, len(party))
	for _, k := range party {
		resilience := clampFloat(float64(k.Attributes.Willpower)/200, 0, 0.45)
		delta := math.Round(base * scale * (1 - resilience) * (0.9 + r.Next()*0.2))
		out = append(out, ConditionDelta{KnightID: k.ID, FatigueDelta: delta})
	}
	return out
}

// grantLoot 擲出戰利品並逐件入庫。未知物品只記警告不中斷。
func (o *Orchestrator) grantLoot(enc EncounterDefinition, r *rng.Source) []*InventoryItem {
	drops := o.sim.RollLoot(enc, o.lootRate, r)
	granted := make([]*InventoryItem, 0, len(drops))
	for _, drop := range drops {
		def := o.items.Get(drop.ItemID)
		if def == nil {
			o.log.Warn("loot references unknown item", zap.String("item_id", drop.ItemID))
			continue
		}
		// 素材不帶品質才能併堆；撿到的裝備一律標準品質。
		quality := data.Quality("")
		if def.Kind == data.KindEquipment {
			quality = data.QualityStandard
		}
		item := o.inventory.AddItem(&InventoryItem{
			BaseItemID: def.ItemID,
			Name:       def.Name,
			Kind:       def.Kind,
			Slot:       def.Slot,
			Quantity:   drop.Quantity,
			Quality:    quality,
			Rarity:     def.Rarity,
			Value:      def.Value,
		})
		if item != nil {
			granted = append(granted, item)
		}
	}
	return granted
}

// gainIntel 累積龍穴情報：進度夾制於上限，達標即永久解鎖。
// 回傳本次是否觸發解鎖。
func (o *Orchestrator) gainIntel(amount int) bool {
	if amount <= 0 {
		return false
	}
	o.intel.Current += amount
	if o.intel.Current > DragonIntelMax {
		o.intel.Current = DragonIntelMax
	}
	unlocked := false
	if !o.intel.LairUnlocked && o.intel.Current >= o.intel.Threshold {
		o.intel.LairUnlocked = true
		unlocked = true
		o.log.Info("dragon lair unlocked", zap.Int("intel", o.intel.Current))
	}
	o.emitIntel()
	return unlocked
}

func (o *Orchestrator) emitIntel() {
	if o.bus != nil {
		event.Emit(o.bus, event.DragonIntelChanged{
			Current:      o.intel.Current,
			Threshold:    o.intel.Threshold,
			LairUnlocked: o.intel.LairUnlocked,
		})
	}
}
