package sim

import (
	"github.com/dragonfell/server/internal/core/event"
	"github.com/dragonfell/server/internal/data"
)

// WeeklyEffects 是所有建築當前等級效果的彙總。
type WeeklyEffects struct {
	TrainingPointsPerWeek float64
	InjuryRecoveryPerWeek float64
	IntelAccuracyBonus    float64
	SmithSkillBonus       int
}

// Castle 管理四棟建築的等級進度與共用訓練點數。
// 等級只增不減，且唯一的升級路徑是 Upgrade。
type Castle struct {
	bus    *event.Bus
	table  *data.BuildingTable
	ledger *Ledger
	roster *Roster

	levels               map[string]int
	storedTrainingPoints float64
}

func NewCastle(bus *event.Bus, table *data.BuildingTable, ledger *Ledger, roster *Roster) *Castle {
	levels := make(map[string]int, len(data.BuildingIDs))
	for _, id := range data.BuildingIDs {
		levels[id] = 1
	}
	c := &Castle{
		bus:    bus,
		table:  table,
		ledger: ledger,
		roster: roster,
		levels: levels,
	}
	c.emit()
	return c
}

// Level 回傳建築目前等級（未知建築為 0）。
func (c *Castle) Level(buildingID string) int {
	return c.levels[buildingID]
}

// Levels 回傳所有建築等級的複本。
func (c *Castle) Levels() map[string]int {
	out := make(map[string]int, len(c.levels))
	for k, v := range c.levels {
		out[k] = v
	}
	return out
}

// StoredTrainingPoints 回傳共用訓練點數存量。
func (c *Castle) StoredTrainingPoints() float64 {
	return c.storedTrainingPoints
}

// SpendTrainingPoints 扣除訓練點數，不足回傳 false。
func (c *Castle) SpendTrainingPoints(amount float64) bool {
	if amount <= 0 || c.storedTrainingPoints < amount {
		return false
	}
	c.storedTrainingPoints -= amount
	c.emit()
	return true
}

// NextLevelDef 回傳建築下一級的定義，已達頂級或定義缺漏為 nil。
func (c *Castle) NextLevelDef(buildingID string) *data.BuildingLevelDef {
	def := c.table.Get(buildingID)
	if def == nil {
		return nil
	}
	next := c.levels[buildingID] + 1
	if next > len(def.Levels) {
		return nil
	}
	lv := def.Levels[next-1]
	return &lv
}

// Upgrade 升級建築一級：已達頂級、定義缺漏或資源不足皆拒絕
// （回傳 false，不扣資源）。成功時扣除成本並恰好 +1 級。
func (c *Castle) Upgrade(buildingID string) bool {
	next := c.NextLevelDef(buildingID)
	if next == nil {
		return false
	}
	if !c.ledger.CanAfford(next.Cost) {
		return false
	}
	debits := make(map[string]float64, len(next.Cost))
	for k, v := range next.Cost {
		if v > 0 {
			debits[k] = -v
		}
	}
	c.ledger.AdjustAll(debits)
	c.levels[buildingID]++
	c.emit()
	return true
}

// AggregateEffects 彙總所有建築當前等級的週期效果。
func (c *Castle) AggregateEffects() WeeklyEffects {
	var agg WeeklyEffects
	for _, id := range data.BuildingIDs {
		def := c.table.Get(id)
		if def == nil {
			continue
		}
		lvl := c.levels[id]
		if lvl < 1 || lvl > len(def.Levels) {
			continue
		}
		eff := def.Levels[lvl-1]
		agg.TrainingPointsPerWeek += eff.TrainingPointsPerWeek
		agg.InjuryRecoveryPerWeek += eff.InjuryRecoveryPerWeek
		agg.IntelAccuracyBonus += eff.IntelAccuracyBonus
		agg.SmithSkillBonus += eff.SmithSkillBonus
	}
	return agg
}

// SmithLevel 回傳鍛造等級：鍛造坊等級加上各級的技術加成，供製作擲骰。
func (c *Castle) SmithLevel() int {
	return c.levels[data.BuildingForge] + c.AggregateEffects().SmithSkillBonus
}

// WeeklyTick 套用每週被動效果：累積訓練點數、為受傷騎士施加
// 醫護所回復（下限 0 由名冊管理器夾制）。
func (c *Castle) WeeklyTick() {
	agg := c.AggregateEffects()
	if agg.TrainingPointsPerWeek > 0 {
		c.storedTrainingPoints += agg.TrainingPointsPerWeek
	}
	if agg.InjuryRecoveryPerWeek > 0 && c.roster != nil {
		var deltas []ConditionDelta
		for _, k := range c.roster.RosterList() {
			if k.Injury > 0 {
				deltas = append(deltas, ConditionDelta{
					KnightID:    k.ID,
					InjuryDelta: -agg.InjuryRecoveryPerWeek,
				})
			}
		}
		if len(deltas) > 0 {
			c.roster.ApplyConditionAdjustments(deltas)
		}
	}
	c.emit()
}

// Restore 以存檔內容重建建築狀態（持久化邊界）。
func (c *Castle) Restore(levels map[string]int, storedTrainingPoints float64) {
	for _, id := range data.BuildingIDs {
		if lvl, ok := levels[id]; ok && lvl >= 1 {
			c.levels[id] = lvl
		}
	}
	c.storedTrainingPoints = storedTrainingPoints
	c.emit()
}

func (c *Castle) emit() {
	if c.bus != nil {
		event.Emit(c.bus, event.BuildingsUpdated{
			Levels:               c.Levels(),
			StoredTrainingPoints: c.storedTrainingPoints,
		})
	}
}
