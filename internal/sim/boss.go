package sim

import (
	"math"

	"github.com/dragonfell/server/internal/rng"
)

// ==================== 魔龍決戰 ====================

// BossPhase 是決戰的一個階段。
type BossPhase string

const (
	PhaseScaled  BossPhase = "scaled"
	PhaseWounded BossPhase = "wounded"
	PhaseRage    BossPhase = "rage"
)

// HazardKind 是環境災害種類。
type HazardKind string

const (
	HazardLava HazardKind = "lava"
	HazardAcid HazardKind = "acid"
)

const bossRoundCap = 14

// phaseTemplate 定義各階段的基準數值；實際血量另依存活騎士數
// 每人加 22 點。
type phaseTemplate struct {
	phase        BossPhase
	baseHealth   float64
	attackMult   float64
	retaliation  float64
	hazardChance float64
}

var bossPhases = []phaseTemplate{
	{PhaseScaled, 220, 1.0, 26, 0.18},
	{PhaseWounded, 180, 1.2, 32, 0.28},
	{PhaseRage, 150, 1.45, 40, 0.38},
}

// hazardResistance 是各職業對環境災害的固定抗性。
var hazardResistance = map[Profession]float64{
	ProfessionGuardian: 0.30,
	ProfessionVanguard: 0.20,
	ProfessionRanger:   0.15,
	ProfessionChaplain: 0.25,
	ProfessionSentinel: 0.20,
}

// HazardEvent 記錄一次災害生成或傷害結算，供展示層回放。
type HazardEvent struct {
	Round  int
	Kind   HazardKind
	Damage int
}

// PhaseReport 是單一階段的結算。
type PhaseReport struct {
	Phase        BossPhase
	Rounds       int
	DamageDealt  int
	DamageTaken  int
	HazardEvents []HazardEvent
}

// BossBattleReport 是整場決戰的彙總輸出。
type BossBattleReport struct {
	Outcome     Outcome
	TotalRounds int
	DamageDealt int
	DamageTaken int
	MVPKnightID int
	Phases      []PhaseReport
	Fallen      []int
	Survivors   []int
	Attrition   []ConditionDelta
}

// activeHazard 是場上一個持續中的災害。
type activeHazard struct {
	kind      HazardKind
	damage    float64
	remaining int
}

// bossCombatant 是決戰期間單一騎士的臨時狀態，戰後只以
// 消耗增量的形式回寫名冊。
type bossCombatant struct {
	knight      *KnightRecord
	health      float64
	maxHealth   float64
	stamina     float64
	damageDealt float64
	damageTaken float64
	fallen      bool
}

// SimulateBossBattle 解析三階段魔龍決戰。全滅立即判負；撐過第三
// 階段即勝。相同輸入與種子得到完全相同的報告。
func (s *Simulator) SimulateBossBattle(party []*KnightRecord, r *rng.Source) BossBattleReport {
	if len(party) == 0 {
		return BossBattleReport{Outcome: OutcomeDefeat}
	}

	combatants := make([]*bossCombatant, 0, len(party))
	for _, k := range party {
		maxHP := math.Round((60 + float64(k.Attributes.Might)*0.5 + float64(k.Attributes.Willpower)*0.5) *
			(1 - k.Injury/200))
		if maxHP < 20 {
			maxHP = 20
		}
		combatants = append(combatants, &bossCombatant{
			knight:    k,
			health:    maxHP,
			maxHealth: maxHP,
			stamina:   clampFloat(100-k.Fatigue, 10, 100),
		})
	}

	report := BossBattleReport{Outcome: OutcomeVictory}
	wiped := false

	for _, tmpl := range bossPhases {
		phase := s.runBossPhase(tmpl, combatants, r)
		report.Phases = append(report.Phases, phase)
		report.TotalRounds += phase.Rounds
		report.DamageDealt += phase.DamageDealt
		report.DamageTaken += phase.DamageTaken
		if aliveCount(combatants) == 0 {
			wiped = true
			break
		}
	}
	if wiped {
		report.Outcome = OutcomeDefeat
	}

	// MVP 取全場輸出最高者；戰損增量依承傷佔比換算，倒下者直接滿值。
	bestDamage := -1.0
	for _, c := range combatants {
		if c.damageDealt > bestDamage {
			bestDamage = c.damageDealt
			report.MVPKnightID = c.knight.ID
		}
		if c.fallen {
			report.Fallen = append(report.Fallen, c.knight.ID)
		} else {
			report.Survivors = append(report.Survivors, c.knight.ID)
		}
		report.Attrition = append(report.Attrition, bossAttrition(c))
	}
	return report
}

func bossAttrition(c *bossCombatant) ConditionDelta {
	injury := 100.0
	if !c.fallen {
		injury = math.Round(c.damageTaken / c.maxHealth * 80)
	}
	fatigue := math.Round(25 + c.damageTaken/c.maxHealth*20)
	return ConditionDelta{
		KnightID:     c.knight.ID,
		InjuryDelta:  injury,
		FatigueDelta: fatigue,
	}
}

// runBossPhase 跑完一個階段：每回合依序結算持續災害、災害生成、
// 合擊與反擊，直到龍血歸零、回合上限或全滅。
func (s *Simulator) runBossPhase(tmpl phaseTemplate, combatants []*bossCombatant, r *rng.Source) PhaseReport {
	report := PhaseReport{Phase: tmpl.phase}
	dragonHealth := tmpl.baseHealth + 22*float64(aliveCount(combatants))
	var hazards []activeHazard

	for round := 1; round <= bossRoundCap; round++ {
		report.Rounds = round

		// 持續災害先結算，可能直接擊倒騎士。
		for i := range hazards {
			dealt := tickHazard(&hazards[i], combatants, round, r, &report)
			report.DamageTaken += dealt
		}
		hazards = pruneHazards(hazards)
		if aliveCount(combatants) == 0 {
			return report
		}

		if r.Next() < tmpl.hazardChance {
			h := spawnHazard(r)
			hazards = append(hazards, h)
			report.HazardEvents = append(report.HazardEvents, HazardEvent{
				Round: round,
				Kind:  h.kind,
			})
		}

		// 合擊：體力加權、職業加成的全隊輸出。
		strike := 0.0
		for _, c := range combatants {
			if c.fallen {
				continue
			}
			k := c.knight
			base := float64(k.Attributes.Might)*1.2 + float64(k.Attributes.Agility)*0.9
			dmg := base * (0.5 + c.stamina/200) * ProfessionBattleBonus(k.Profession) * (0.85 + r.Next()*0.3)
			c.damageDealt += dmg
			strike += dmg
		}
		strike = math.Round(strike * 0.2)
		dragonHealth -= strike
		report.DamageDealt += int(strike)
		if dragonHealth <= 0 {
			return report
		}

		// 反擊平分給存活者，各自以力量減免。
		survivors := aliveCount(combatants)
		share := tmpl.retaliation * tmpl.attackMult / float64(survivors)
		for _, c := range combatants {
			if c.fallen {
				continue
			}
			mitigation := math.Min(0.6, float64(c.knight.Attributes.Might)/180)
			dmg := math.Round(share * (1 - mitigation) * (0.85 + r.Next()*0.3))
			c.health -= dmg
			c.damageTaken += dmg
			report.DamageTaken += int(dmg)
			if c.health <= 0 {
				c.fallen = true
			}
		}
		if aliveCount(combatants) == 0 {
			return report
		}
	}
	return report
}

// tickHazard 對所有存活者結算一次災害傷害，回傳總承傷。
// 減免混合職業固定抗性與意志加成，合計上限 0.75。
func tickHazard(h *activeHazard, combatants []*bossCombatant, round int, r *rng.Source, report *PhaseReport) int {
	total := 0
	for _, c := range combatants {
		if c.fallen {
			continue
		}
		resist := hazardResistance[c.knight.Profession] + float64(c.knight.Attributes.Willpower)/250
		if resist > 0.75 {
			resist = 0.75
		}
		dmg := math.Round(h.damage * (1 - resist) * (0.9 + r.Next()*0.2))
		c.health -= dmg
		c.damageTaken += dmg
		total += int(dmg)
		if c.health <= 0 {
			c.fallen = true
		}
	}
	h.remaining--
	if total > 0 {
		report.HazardEvents = append(report.HazardEvents, HazardEvent{
			Round:  round,
			Kind:   h.kind,
			Damage: total,
		})
	}
	return total
}

func spawnHazard(r *rng.Source) activeHazard {
	if r.Next() < 0.5 {
		return activeHazard{kind: HazardLava, damage: 14, remaining: r.Range(2, 3)}
	}
	return activeHazard{kind: HazardAcid, damage: 10, remaining: r.Range(2, 3)}
}

func pruneHazards(hazards []activeHazard) []activeHazard {
	out := hazards[:0]
	for _, h := range hazards {
		if h.remaining > 0 {
			out = append(out, h)
		}
	}
	return out
}

func aliveCount(combatants []*bossCombatant) int {
	n := 0
	for _, c := range combatants {
		if !c.fallen {
			n++
		}
	}
	return n
}
