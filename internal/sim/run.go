package sim

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/dragonfell/server/internal/rng"
)

// ==================== 王朝週期 ====================

// RunModifier 是開局時由選定敕令轉換而來的一局修正。
type RunModifier struct {
	MandateID      string
	Title          string
	PrestigeReward float64
}

// Run 是一次完整的王朝：自繼位起到魔龍決戰落幕。
type Run struct {
	Seed      int64
	StartedAt time.Time
	Modifiers []RunModifier
}

// RunSummary 是一局結束的結算，暫存至主選單消費為止。
type RunSummary struct {
	Outcome      Outcome
	LegacyPoints int
	Notes        []string
	EndedAt      time.Time
	Stats        TelemetrySnapshot
}

// RunManager 管理王朝的開始與結束。同一時間最多保存一份待消費
// 的結算，新結算直接覆蓋舊的。
type RunManager struct {
	log       *zap.Logger
	mandates  *Mandates
	telemetry *Telemetry

	current *Run
	pending *RunSummary
}

func NewRunManager(log *zap.Logger, mandates *Mandates, telemetry *Telemetry) *RunManager {
	return &RunManager{log: log, mandates: mandates, telemetry: telemetry}
}

// Current 回傳進行中的王朝，無則 nil。
func (rm *RunManager) Current() *Run { return rm.current }

// StartRun 開始新王朝：把選定的敕令 id 轉為本局修正。引用了
// 不存在的敕令屬內容錯誤，整個開局中止。
func (rm *RunManager) StartRun(seed int64, mandateIDs []string, now time.Time) (*Run, error) {
	mods := make([]RunModifier, 0, len(mandateIDs))
	for _, id := range mandateIDs {
		def, err := rm.mandates.Get(id)
		if err != nil {
			return nil, err
		}
		if def == nil {
			return nil, fmt.Errorf("sim: start run: unknown mandate %q", id)
		}
		mods = append(mods, RunModifier{
			MandateID:      def.MandateID,
			Title:          def.Title,
			PrestigeReward: def.PrestigeReward,
		})
	}

	rm.current = &Run{Seed: seed, StartedAt: now, Modifiers: mods}
	rm.telemetry.Reset()
	rm.log.Info("run started",
		zap.Int64("seed", seed),
		zap.Int("modifiers", len(mods)))
	return rm.current, nil
}

// EndRun 結束王朝並計算傳承點數：勝 120 敗 45 為底，加上各修正
// 的威望獎勵 ×12 與修正張數 ×8，向下不低於零。結算覆蓋任何
// 先前未消費的結算。無進行中王朝回傳 nil。
func (rm *RunManager) EndRun(outcome Outcome, now time.Time) *RunSummary {
	if rm.current == nil {
		return nil
	}

	base := 45.0
	if outcome == OutcomeVictory {
		base = 120
	}
	prestige := 0.0
	for _, m := range rm.current.Modifiers {
		prestige += m.PrestigeReward
	}
	points := int(math.Round(math.Max(0, base+prestige*12+float64(len(rm.current.Modifiers))*8)))

	summary := &RunSummary{
		Outcome:      outcome,
		LegacyPoints: points,
		Notes:        rm.buildNotes(outcome, points),
		EndedAt:      now,
		Stats:        rm.telemetry.Snapshot(),
	}
	rm.pending = summary
	rm.current = nil

	rm.log.Info("run ended",
		zap.String("outcome", string(outcome)),
		zap.Int("legacy_points", points))
	return summary
}

// ConsumePendingSummary 取走待消費的結算並清空，無則 nil。
func (rm *RunManager) ConsumePendingSummary() *RunSummary {
	s := rm.pending
	rm.pending = nil
	return s
}

func (rm *RunManager) buildNotes(outcome Outcome, points int) []string {
	stats := rm.telemetry.Snapshot()
	notes := []string{
		fmt.Sprintf("The reign ends in %s.", outcomeNoun(outcome)),
		fmt.Sprintf("%d expeditions were mounted; %d ended in victory.", stats.Expeditions, stats.Victories),
	}
	for _, m := range rm.current.Modifiers {
		notes = append(notes, fmt.Sprintf("The mandate %q shaped this reign.", m.Title))
	}
	notes = append(notes, fmt.Sprintf("%d legacy points pass to the next heir.", points))
	return notes
}

func outcomeNoun(outcome Outcome) string {
	switch outcome {
	case OutcomeVictory:
		return "triumph"
	case OutcomeDefeat:
		return "ruin"
	default:
		return "retreat"
	}
}

// NewRunSeed 衍生下一局的種子：沿用既有 RNG 流可讓連續王朝
// 彼此可重現。
func NewRunSeed(r *rng.Source) int64 {
	return int64(r.Next() * 2147483646)
}
