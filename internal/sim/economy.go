package sim

import (
	"github.com/dragonfell/server/internal/core/event"
	"github.com/dragonfell/server/internal/data"
)

// ==================== 王國經濟 ====================

// 每週基礎收支常數。
var (
	baseWeeklyIncome = map[string]float64{
		data.ResourceGold: 60,
		data.ResourceFood: 45,
	}
	baseWeeklyUpkeep = map[string]float64{
		data.ResourceGold: 20,
		data.ResourceFood: 15,
	}
	perKnightUpkeep = map[string]float64{
		data.ResourceGold: 6,
		data.ResourceFood: 4,
	}
)

// 每點傷勢的每週治療開銷（金幣）。
const treatmentCostPerInjury = 0.4

// WeekProjection 是單週收支預測。
type WeekProjection struct {
	Week      int
	Income    map[string]float64
	Upkeep    map[string]float64
	Net       map[string]float64
	Resulting map[string]float64
	Deficits  []string
}

// Forecast 是目前週與下一週的滾動預測。
type Forecast struct {
	Current WeekProjection
	Next    WeekProjection
}

// Forecaster 維護兩週滾動收支預測。預測純屬資訊，不阻擋任何操作；
// 真正的收支只在週進位時套用一次。
type Forecaster struct {
	bus    *event.Bus
	ledger *Ledger
	roster *Roster

	week     int
	forecast Forecast
}

func NewForecaster(bus *event.Bus, ledger *Ledger, roster *Roster) *Forecaster {
	f := &Forecaster{bus: bus, ledger: ledger, roster: roster}
	if bus != nil {
		// 資源或名冊變動都會讓預測失效。
		event.Subscribe(bus, func(event.ResourcesChanged) { f.Recompute() })
		event.Subscribe(bus, func(event.KnightRosterChanged) { f.Recompute() })
	}
	return f
}

// Forecast 回傳最近一次計算的預測。
func (f *Forecaster) Forecast() Forecast { return f.forecast }

// SetWeek 同步目前週數（由時鐘驅動）。
func (f *Forecaster) SetWeek(week int) {
	f.week = week
	f.Recompute()
}

// weeklyNet 計算一週的收入與開銷。
func (f *Forecaster) weeklyNet() (income, upkeep map[string]float64) {
	rosterSize := float64(f.roster.RosterSize())
	totalInjury := f.roster.TotalInjury()

	income = make(map[string]float64, len(baseWeeklyIncome))
	for k, v := range baseWeeklyIncome {
		income[k] = v
	}
	upkeep = make(map[string]float64, len(baseWeeklyUpkeep))
	for k, v := range baseWeeklyUpkeep {
		upkeep[k] = v + perKnightUpkeep[k]*rosterSize
	}
	upkeep[data.ResourceGold] += treatmentCostPerInjury * totalInjury
	return income, upkeep
}

// project 由假設的起始資源推一週收支。
func (f *Forecaster) project(week int, start map[string]float64) WeekProjection {
	income, upkeep := f.weeklyNet()
	p := WeekProjection{
		Week:      week,
		Income:    income,
		Upkeep:    upkeep,
		Net:       make(map[string]float64),
		Resulting: make(map[string]float64),
	}
	for _, key := range []string{data.ResourceGold, data.ResourceFood} {
		net := income[key] - upkeep[key]
		p.Net[key] = net
		p.Resulting[key] = start[key] + net
		if p.Resulting[key] < 0 {
			p.Deficits = append(p.Deficits, key)
		}
	}
	return p
}

// Recompute 重算兩週預測並廣播赤字清單。
func (f *Forecaster) Recompute() {
	snapshot := f.ledger.Snapshot()
	current := f.project(f.week, snapshot)
	next := f.project(f.week+1, current.Resulting)
	f.forecast = Forecast{Current: current, Next: next}

	if f.bus != nil {
		deficits := append([]string(nil), current.Deficits...)
		for _, d := range next.Deficits {
			found := false
			for _, existing := range deficits {
				if existing == d {
					found = true
					break
				}
			}
			if !found {
				deficits = append(deficits, d)
			}
		}
		event.Emit(f.bus, event.EconomyForecastUpdated{DeficitResources: deficits})
	}
}

// ApplyWeekly 在週進位時把本週淨收支真正記帳。
func (f *Forecaster) ApplyWeekly() {
	income, upkeep := f.weeklyNet()
	deltas := make(map[string]float64)
	for _, key := range []string{data.ResourceGold, data.ResourceFood} {
		deltas[key] = income[key] - upkeep[key]
	}
	f.ledger.AdjustAll(deltas)
}
