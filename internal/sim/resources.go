package sim

import (
	"math"

	"github.com/dragonfell/server/internal/core/event"
	"github.com/dragonfell/server/internal/data"
)

// Ledger 管理四種城堡資源（金幣/糧食/聲望/士氣）。
// 不做下限夾制：赤字由經濟預測系統呈現，不在此層阻擋。
type Ledger struct {
	bus    *event.Bus
	values map[string]float64
	rates  map[string]float64 // 每秒產量

	fraction float64 // 未滿一秒的累積量
}

// DefaultResources 回傳新政權的起始資源。
func DefaultResources() map[string]float64 {
	return map[string]float64{
		data.ResourceGold:   500,
		data.ResourceFood:   300,
		data.ResourceFame:   10,
		data.ResourceMorale: 50,
	}
}

// DefaultRates 回傳預設每秒產量。
func DefaultRates() map[string]float64 {
	return map[string]float64{
		data.ResourceGold:   0.5,
		data.ResourceFood:   0.3,
		data.ResourceFame:   0,
		data.ResourceMorale: 0,
	}
}

func NewLedger(bus *event.Bus) *Ledger {
	return &Ledger{
		bus:    bus,
		values: DefaultResources(),
		rates:  DefaultRates(),
	}
}

// Initialize 重設資源與產率並發出快照事件。nil 參數使用預設值。
func (l *Ledger) Initialize(values, rates map[string]float64) {
	if values == nil {
		values = DefaultResources()
	}
	if rates == nil {
		rates = DefaultRates()
	}
	l.values = make(map[string]float64, len(data.ResourceKeys))
	l.rates = make(map[string]float64, len(data.ResourceKeys))
	for _, k := range data.ResourceKeys {
		l.values[k] = values[k]
		l.rates[k] = rates[k]
	}
	l.fraction = 0
	l.emit()
}

// Update 累積小數秒數，每跨越一整秒即套用一次每秒產率。
// 支援一次呼叫跨越多秒（例如切回分頁後的大 delta）。
func (l *Ledger) Update(deltaSeconds float64) {
	if deltaSeconds <= 0 {
		return
	}
	l.fraction += deltaSeconds
	whole := math.Floor(l.fraction)
	if whole < 1 {
		return
	}
	l.fraction -= whole
	for k, rate := range l.rates {
		if rate != 0 {
			l.values[k] += rate * whole
		}
	}
	l.emit()
}

// Adjust 即時調整單一資源並立刻發出快照。
func (l *Ledger) Adjust(resource string, delta float64) {
	l.values[resource] += delta
	l.emit()
}

// AdjustAll 套用多項資源變化，僅發出一次快照。
func (l *Ledger) AdjustAll(deltas map[string]float64) {
	for k, d := range deltas {
		l.values[k] += d
	}
	l.emit()
}

// SetRate 覆寫單一資源的每秒產率。
func (l *Ledger) SetRate(resource string, perSecond float64) {
	l.rates[resource] = perSecond
}

// Snapshot 回傳目前資源的防禦性複本。
func (l *Ledger) Snapshot() map[string]float64 {
	out := make(map[string]float64, len(l.values))
	for k, v := range l.values {
		out[k] = v
	}
	return out
}

// Get 回傳單一資源目前數值。
func (l *Ledger) Get(resource string) float64 {
	return l.values[resource]
}

// CanAfford 檢查目前資源是否足以支付所有非零成本。
func (l *Ledger) CanAfford(cost map[string]float64) bool {
	for k, c := range cost {
		if c > 0 && l.values[k] < c {
			return false
		}
	}
	return true
}

func (l *Ledger) emit() {
	if l.bus != nil {
		event.Emit(l.bus, event.ResourcesChanged{Resources: l.Snapshot()})
	}
}
