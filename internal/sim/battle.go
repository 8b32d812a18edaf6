package sim

import (
	"math"

	"github.com/dragonfell/server/internal/data"
	"github.com/dragonfell/server/internal/rng"
	"github.com/dragonfell/server/internal/scripting"
)

// Outcome 是一場戰鬥的結果。
type Outcome string

const (
	OutcomeVictory Outcome = "victory"
	OutcomeDefeat  Outcome = "defeat"
	OutcomeRetreat Outcome = "retreat"
)

// EncounterDefinition 由地圖節點 + 種子衍生，僅存在於單次遠征期間，
// 不做持久化。
type EncounterDefinition struct {
	NodeID      string
	Name        string
	Biome       string
	Threat      string
	PowerRating float64
	EnemyCount  int
	IntelChance float64
	IntelMin    int
	IntelMax    int
	LootTable   []data.LootEntry
}

// BattleReport 是戰鬥模擬的彙總輸出，交給遠征協調器立即消費。
type BattleReport struct {
	Outcome     Outcome
	Rounds      int
	Ratio       float64
	PartyPower  float64
	DamageDealt int
	DamageTaken int
	MVPKnightID int
}

// LootDrop 是一筆戰利品。
type LootDrop struct {
	ItemID   string
	Quantity int
}

// InjuryResult 是一名騎士的傷勢增量。
type InjuryResult struct {
	KnightID    int
	InjuryDelta float64
}

// Simulator 以純函式方式解析抽象的隊伍對遭遇戰。
// 所有結果分支（全滅、零戰利品）都是合法輸出，不是錯誤。
type Simulator struct {
	tuning scripting.Tuning
}

func NewSimulator(tuning scripting.Tuning) *Simulator {
	return &Simulator{tuning: tuning}
}

// ==================== 戰鬥解析 ====================

// memberPower 計算單一騎士的有效戰力：屬性加權後乘以疲勞/傷勢懲罰
// 與職業加成。
func memberPower(k *KnightRecord) float64 {
	base := float64(k.Attributes.Might)*1.1 +
		float64(k.Attributes.Agility)*1.0 +
		float64(k.Attributes.Willpower)*0.9
	fatiguePenalty := 1 - math.Min(0.6, k.Fatigue/160)
	injuryPenalty := 1 - math.Min(0.7, k.Injury/140)
	return base * fatiguePenalty * injuryPenalty * ProfessionBattleBonus(k.Profession)
}

// Simulate 解析一場隊伍對遭遇戰。相同輸入與 RNG 種子產生逐位元
// 相同的報告。空隊強制撤退且所有統計為零。
func (s *Simulator) Simulate(party []*KnightRecord, enc EncounterDefinition, r *rng.Source) BattleReport {
	if len(party) == 0 {
		return BattleReport{Outcome: OutcomeRetreat}
	}

	partyPower := 0.0
	traitSum := 0.0
	for _, k := range party {
		partyPower += memberPower(k)
		traitSum += TraitMoraleBoost(k.Trait)
	}

	morale := (1 + traitSum/float64(len(party))) * (0.9 + r.Next()*0.2)
	luck := 0.85 + r.Next()*0.3
	effective := partyPower * morale * luck
	ratio := effective / math.Max(1, enc.PowerRating)

	outcome := s.resolveOutcome(ratio, r)

	rounds := r.Range(2, 6)
	dealt, taken := s.rollDamage(outcome, ratio, enc.PowerRating, r)
	mvp := rollMVP(party, r)

	return BattleReport{
		Outcome:     outcome,
		Rounds:      rounds,
		Ratio:       ratio,
		PartyPower:  partyPower,
		DamageDealt: dealt,
		DamageTaken: taken,
		MVPKnightID: mvp,
	}
}

// resolveOutcome 把戰力比換成結果：高於勝利線直接勝；低於潰敗線
// 則小機率逃脫否則敗北；中間的拉鋸帶另擲一次決定。
func (s *Simulator) resolveOutcome(ratio float64, r *rng.Source) Outcome {
	t := s.tuning
	switch {
	case ratio >= t.WinRatio:
		return OutcomeVictory
	case ratio <= t.RoutRatio:
		if r.Next() < t.RoutFleeChance {
			return OutcomeRetreat
		}
		return OutcomeDefeat
	default:
		roll := r.Next()
		if ratio >= 1 || roll > t.ContestedWinRoll {
			return OutcomeVictory
		}
		if roll < t.ContestedFleeRoll {
			return OutcomeRetreat
		}
		return OutcomeDefeat
	}
}

// rollDamage 計算雙方傷害：以遭遇戰力為基準，依結果與戰力比縮放，
// 附帶各自獨立的隨機係數。
func (s *Simulator) rollDamage(outcome Outcome, ratio, power float64, r *rng.Source) (dealt, taken int) {
	base := power * s.tuning.BaseDamageScale

	var dealtScale, takenScale float64
	switch outcome {
	case OutcomeVictory:
		dealtScale, takenScale = 1.0, 0.45
	case OutcomeDefeat:
		dealtScale, takenScale = 0.55, 1.0
	default: // 撤退
		dealtScale, takenScale = 0.25, 0.7
	}

	dealtF := base * math.Min(ratio, 1.6) * dealtScale * (0.8 + r.Next()*0.4)
	takenF := base / math.Max(0.5, ratio) * takenScale * (0.9 + r.Next()*0.4)

	return int(math.Round(dealtF)), int(math.Round(takenF))
}

// rollMVP 依戰功分數加權抽選 MVP（分數下限 1）。
func rollMVP(party []*KnightRecord, r *rng.Source) int {
	total := 0.0
	scores := make([]float64, len(party))
	for i, k := range party {
		sc := float64(k.Attributes.Might)*1.1 +
			float64(k.Attributes.Agility) +
			float64(k.Attributes.Willpower)*0.9
		if sc < 1 {
			sc = 1
		}
		scores[i] = sc
		total += sc
	}
	roll := r.Next() * total
	for i, sc := range scores {
		roll -= sc
		if roll < 0 {
			return party[i].ID
		}
	}
	return party[len(party)-1].ID
}

// ==================== 戰後處理 ====================

// ApplyInjuries 把承受傷害平均分給隊員，各自依屬性減免並附帶獨立
// 變異，四捨五入為整數傷勢增量（最終傷勢由名冊夾制 ≤100）。
func (s *Simulator) ApplyInjuries(party []*KnightRecord, damageTaken int, r *rng.Source) []InjuryResult {
	if len(party) == 0 || damageTaken <= 0 {
		return nil
	}
	share := float64(damageTaken) / float64(len(party))
	out := make([]InjuryResult, 0, len(party))
	for _, k := range party {
		mitigation := clampFloat(
			(float64(k.Attributes.Willpower)+float64(k.Attributes.Might))/2/160,
			0.4, 0.9)
		delta := math.Round(share * (1 - mitigation) * (0.85 + r.Next()*0.3))
		out = append(out, InjuryResult{KnightID: k.ID, InjuryDelta: delta})
	}
	return out
}

// RollLoot 擲戰利品：基礎 1 件，遭遇戰力 ≥60 再 +1、≥90 再 +2，
// 35% 機率額外 +1；總數乘以戰利品倍率（小數部分以一次伯努利試驗
// 決定進位）。每件獨立自掉落表加權抽樣，數量在 [min,max] 均勻。
func (s *Simulator) RollLoot(enc EncounterDefinition, lootRate float64, r *rng.Source) []LootDrop {
	if len(enc.LootTable) == 0 {
		return nil
	}
	count := 1
	if enc.PowerRating >= 90 {
		count += 2
	} else if enc.PowerRating >= 60 {
		count++
	}
	if r.Next() < 0.35 {
		count++
	}

	scaled := float64(count) * lootRate
	whole := int(math.Floor(scaled))
	if frac := scaled - float64(whole); frac > 0 && r.Next() < frac {
		whole++
	}
	if whole <= 0 {
		return nil
	}

	drops := make([]LootDrop, 0, whole)
	for i := 0; i < whole; i++ {
		entry := weightedLootPick(enc.LootTable, r)
		drops = append(drops, LootDrop{
			ItemID:   entry.ItemID,
			Quantity: r.Range(entry.Min, entry.Max),
		})
	}
	return drops
}

func weightedLootPick(table []data.LootEntry, r *rng.Source) data.LootEntry {
	total := 0.0
	for _, e := range table {
		total += e.Weight
	}
	roll := r.Next() * total
	for _, e := range table {
		roll -= e.Weight
		if roll < 0 {
			return e
		}
	}
	return table[len(table)-1]
}

// MaybeGainIntel 擲一次情報判定：機率夾制於 [0.05,0.95]，成功且節點
// 有情報範圍時回傳範圍內均勻值（下限為範圍最小值）。
func (s *Simulator) MaybeGainIntel(enc EncounterDefinition, r *rng.Source) int {
	p := clampFloat(enc.IntelChance, 0.05, 0.95)
	if r.Next() >= p {
		return 0
	}
	if enc.IntelMax <= 0 {
		return 0
	}
	amount := r.Range(enc.IntelMin, enc.IntelMax)
	if amount < enc.IntelMin {
		amount = enc.IntelMin
	}
	return amount
}
