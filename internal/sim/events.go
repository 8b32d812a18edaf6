package sim

import (
	"time"

	"go.uber.org/zap"

	"github.com/dragonfell/server/internal/core/event"
	"github.com/dragonfell/server/internal/data"
	"github.com/dragonfell/server/internal/rng"
)

// 事件日誌上限，超過即淘汰最舊紀錄。
const eventLogCap = 50

// EventLogEntry 是一筆已解決的事件紀錄：選了什麼、結果如何、
// 套用了哪些資源效果、在第幾週與何時解決。
type EventLogEntry struct {
	Week       int                `json:"week"`
	EventID    string             `json:"eventId"`
	ChoiceID   string             `json:"choiceId"`
	Success    bool               `json:"success"`
	Effects    map[string]float64 `json:"effects,omitempty"`
	ResolvedAt time.Time          `json:"resolvedAt"`
}

// Events 驅動每週敘事事件：抽選、呈現、結算選項並記錄日誌。
// 自帶獨立的 RNG 流，與戰鬥模擬互不干擾。
type Events struct {
	bus    *event.Bus
	log    *zap.Logger
	table  *data.EventTable
	ledger *Ledger
	r      *rng.Source

	current        *data.EventDef
	pendingEventID string
	logEntries     []EventLogEntry
}

func NewEvents(bus *event.Bus, log *zap.Logger, table *data.EventTable, ledger *Ledger, seed int64) *Events {
	return &Events{
		bus:    bus,
		log:    log,
		table:  table,
		ledger: ledger,
		r:      rng.New(seed),
	}
}

// Current 回傳待玩家抉擇的事件（深複本），無則 nil。
func (e *Events) Current() *data.EventDef {
	if e.current == nil {
		return nil
	}
	return e.table.Get(e.current.EventID)
}

// Log 回傳事件日誌深複本，由舊到新。
func (e *Events) Log() []EventLogEntry {
	return cloneLogEntries(e.logEntries)
}

func cloneLogEntries(entries []EventLogEntry) []EventLogEntry {
	if len(entries) == 0 {
		return nil
	}
	out := make([]EventLogEntry, len(entries))
	for i, entry := range entries {
		if entry.Effects != nil {
			effects := make(map[string]float64, len(entry.Effects))
			for k, v := range entry.Effects {
				effects[k] = v
			}
			entry.Effects = effects
		}
		out[i] = entry
	}
	return out
}

// PendingEventID 回傳排定強制出現的後續事件 id。
func (e *Events) PendingEventID() string { return e.pendingEventID }

// Seed 回傳事件 RNG 的目前狀態，供存檔。
func (e *Events) Seed() int64 { return e.r.State() }

// WeeklyTick 在週進位時抽出本週事件：後續事件優先強制，否則在
// 資源需求全數滿足的事件中按權重抽選。已有未決事件時不疊加。
func (e *Events) WeeklyTick(week int) {
	if e.current != nil {
		return
	}

	var picked *data.EventDef
	if e.pendingEventID != "" {
		picked = e.table.Get(e.pendingEventID)
		if picked == nil {
			e.log.Warn("pending follow-up event missing", zap.String("event_id", e.pendingEventID))
		}
		e.pendingEventID = ""
	}
	if picked == nil {
		picked = e.drawEligible()
	}
	if picked == nil {
		return
	}

	e.current = picked
	if e.bus != nil {
		event.Emit(e.bus, event.NarrativeEventPresented{EventID: picked.EventID, Week: week})
	}
}

// drawEligible 以權重比例抽選一個資源需求全數滿足的事件。
func (e *Events) drawEligible() *data.EventDef {
	snapshot := e.ledger.Snapshot()
	all := e.table.All()
	var eligible []*data.EventDef
	total := 0.0
	for i := range all {
		def := &all[i]
		// 權重為零的事件只能由後續排程強制出現。
		if def.Weight <= 0 {
			continue
		}
		if !requirementsMet(def.Requirements, snapshot) {
			continue
		}
		eligible = append(eligible, def)
		total += def.Weight
	}
	if len(eligible) == 0 || total <= 0 {
		return nil
	}
	roll := e.r.Next() * total
	for _, def := range eligible {
		roll -= def.Weight
		if roll < 0 {
			return def
		}
	}
	return eligible[len(eligible)-1]
}

func requirementsMet(reqs map[string]float64, snapshot map[string]float64) bool {
	for key, min := range reqs {
		if snapshot[key] < min {
			return false
		}
	}
	return true
}

// ResolveChoice 結算目前事件的一個選項：無失敗分支必定成功，
// 否則擲骰對比成功率；立即套用結果的資源效果，並排定後續事件。
// 套用的效果與解決時刻一併寫入日誌。無未決事件或選項不存在時
// 回傳 false。
func (e *Events) ResolveChoice(choiceID string, week int, now time.Time) bool {
	if e.current == nil {
		return false
	}
	var choice *data.EventChoice
	for i := range e.current.Choices {
		if e.current.Choices[i].ChoiceID == choiceID {
			choice = &e.current.Choices[i]
			break
		}
	}
	if choice == nil {
		return false
	}

	success := true
	if choice.Failure != nil {
		success = e.r.Next() <= choice.SuccessRate
	}
	outcome := &choice.Success
	if !success {
		outcome = choice.Failure
	}

	var applied map[string]float64
	if outcome != nil {
		if len(outcome.Effects) > 0 {
			e.ledger.AdjustAll(outcome.Effects)
			applied = make(map[string]float64, len(outcome.Effects))
			for k, v := range outcome.Effects {
				applied[k] = v
			}
		}
		if outcome.FollowUpEventID != "" {
			e.pendingEventID = outcome.FollowUpEventID
		}
	}

	e.appendLog(EventLogEntry{
		Week:       week,
		EventID:    e.current.EventID,
		ChoiceID:   choiceID,
		Success:    success,
		Effects:    applied,
		ResolvedAt: now,
	})

	resolved := e.current.EventID
	e.current = nil
	if e.bus != nil {
		event.Emit(e.bus, event.NarrativeEventResolved{
			EventID:  resolved,
			ChoiceID: choiceID,
			Success:  success,
		})
	}
	return true
}

func (e *Events) appendLog(entry EventLogEntry) {
	e.logEntries = append(e.logEntries, entry)
	if len(e.logEntries) > eventLogCap {
		e.logEntries = e.logEntries[len(e.logEntries)-eventLogCap:]
	}
}

// Restore 自存檔回寫事件狀態。
func (e *Events) Restore(seed int64, pendingEventID string, logEntries []EventLogEntry) {
	e.r = rng.New(seed)
	e.pendingEventID = pendingEventID
	e.logEntries = cloneLogEntries(logEntries)
	if len(e.logEntries) > eventLogCap {
		e.logEntries = e.logEntries[len(e.logEntries)-eventLogCap:]
	}
	e.current = nil
}
