package sim

import (
	"math"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dragonfell/server/internal/core/event"
	"github.com/dragonfell/server/internal/data"
	"github.com/dragonfell/server/internal/rng"
)

// Profession 是騎士職業（五選一），決定基礎屬性模板與戰鬥加成。
type Profession string

const (
	ProfessionGuardian Profession = "Guardian"
	ProfessionVanguard Profession = "Vanguard"
	ProfessionRanger   Profession = "Ranger"
	ProfessionChaplain Profession = "Chaplain"
	ProfessionSentinel Profession = "Sentinel"
)

// Professions 列出所有職業（抽選用）。
var Professions = []Profession{
	ProfessionGuardian, ProfessionVanguard, ProfessionRanger,
	ProfessionChaplain, ProfessionSentinel,
}

type professionTemplate struct {
	might, agility, willpower int
	battleBonus               float64 // 戰鬥力倍率，1.00~1.08
}

var professionTemplates = map[Profession]professionTemplate{
	ProfessionGuardian: {might: 62, agility: 48, willpower: 55, battleBonus: 1.05},
	ProfessionVanguard: {might: 68, agility: 52, willpower: 42, battleBonus: 1.08},
	ProfessionRanger:   {might: 50, agility: 66, willpower: 48, battleBonus: 1.03},
	ProfessionChaplain: {might: 44, agility: 46, willpower: 68, battleBonus: 1.04},
	ProfessionSentinel: {might: 55, agility: 55, willpower: 55, battleBonus: 1.00},
}

// ProfessionBattleBonus 回傳職業戰鬥加成（未知職業視為 1.0）。
func ProfessionBattleBonus(p Profession) float64 {
	if t, ok := professionTemplates[p]; ok {
		return t.battleBonus
	}
	return 1.0
}

// Trait 是騎士特質（五選一），影響戰鬥士氣計算。
type Trait string

const (
	TraitSteadfast   Trait = "steadfast"
	TraitStrategist  Trait = "strategist"
	TraitCharismatic Trait = "charismatic"
	TraitVigilant    Trait = "vigilant"
	TraitReckless    Trait = "reckless"
)

var Traits = []Trait{
	TraitSteadfast, TraitStrategist, TraitCharismatic, TraitVigilant, TraitReckless,
}

// traitMoraleBoost 是各特質對隊伍士氣修正的貢獻。
var traitMoraleBoost = map[Trait]float64{
	TraitSteadfast:   0.04,
	TraitStrategist:  0.05,
	TraitCharismatic: 0.06,
	TraitVigilant:    0.03,
	TraitReckless:    0.01,
}

// TraitMoraleBoost 回傳特質士氣加成（未知特質為 0）。
func TraitMoraleBoost(t Trait) float64 {
	return traitMoraleBoost[t]
}

// Attributes 是騎士三圍，各自限制在 [30,95]。
type Attributes struct {
	Might     int
	Agility   int
	Willpower int
}

// Equipment 記錄騎士身上的裝備（實例 ID 弱引用）。
type Equipment struct {
	WeaponID   int // 0 = 空
	ArmorID    int
	TrinketIDs []int // 最多 3 個
}

// MaxTrinkets 是飾品槽上限。
const MaxTrinkets = 3

// KnightRecord 是一名騎士。Fatigue/Injury 皆夾制於 [0,100]。
type KnightRecord struct {
	ID         int
	Name       string
	Epithet    string
	Profession Profession
	Trait      Trait
	Attributes Attributes
	Fatigue    float64
	Injury     float64
	Equipment  Equipment
}

// Clone 回傳深複本。
func (k *KnightRecord) Clone() *KnightRecord {
	cp := *k
	cp.Equipment.TrinketIDs = append([]int(nil), k.Equipment.TrinketIDs...)
	return &cp
}

// ConditionDelta 是一筆疲勞/傷勢調整。
type ConditionDelta struct {
	KnightID     int
	FatigueDelta float64
	InjuryDelta  float64
}

// ==================== 名字素材 ====================

var knightGivenNames = []string{
	"aldric", "berenice", "cassian", "darrow", "elswyth",
	"fenwick", "gisela", "hadrian", "isolde", "jorun",
	"karsten", "lyanna", "merrick", "nimue", "osric",
	"petra", "quentin", "rosamund", "sigurd", "thessaly",
}

var knightEpithets = []string{
	"the bold", "the unbending", "of the grey march", "ironhand",
	"the quiet blade", "stormborn", "the lastborn", "of ashvale",
	"the oathkeeper", "wyrmbane", "the wayward", "of the low hills",
}

var titleCaser = cases.Title(language.English)

// ==================== 名冊管理 ====================

// CandidatePoolTarget 是候選池的固定補滿目標。
const CandidatePoolTarget = 4

// attributeVariance 是生成屬性相對職業模板的均勻偏移量。
const attributeVariance = 5

// Roster 管理騎士名冊與候選池。ID 為單調遞增計數器。
type Roster struct {
	bus        *event.Bus
	inv        *Inventory
	roster     []*KnightRecord
	candidates []*KnightRecord
	nextID     int
}

func NewRoster(bus *event.Bus, inv *Inventory) *Roster {
	return &Roster{bus: bus, inv: inv, nextID: 1}
}

// RefillCandidates 把候選池補滿到固定目標數。
func (m *Roster) RefillCandidates(r *rng.Source) {
	for len(m.candidates) < CandidatePoolTarget {
		m.candidates = append(m.candidates, m.generate(r))
	}
	m.emit()
}

// generate 擲出一名候選騎士：職業/特質均勻抽選，屬性為職業模板 ±5
// 夾制 [30,95]，起始疲勞/傷勢為小幅隨機值。
func (m *Roster) generate(r *rng.Source) *KnightRecord {
	prof := Professions[r.IntN(len(Professions))]
	trait := Traits[r.IntN(len(Traits))]
	tmpl := professionTemplates[prof]

	rollAttr := func(base int) int {
		v := base + r.Range(-attributeVariance, attributeVariance)
		return clampInt(v, 30, 95)
	}

	k := &KnightRecord{
		ID:         m.nextID,
		Name:       titleCaser.String(knightGivenNames[r.IntN(len(knightGivenNames))]),
		Epithet:    titleCaser.String(knightEpithets[r.IntN(len(knightEpithets))]),
		Profession: prof,
		Trait:      trait,
		Attributes: Attributes{
			Might:     rollAttr(tmpl.might),
			Agility:   rollAttr(tmpl.agility),
			Willpower: rollAttr(tmpl.willpower),
		},
		Fatigue: float64(r.Range(0, 20)),
		Injury:  float64(r.Range(0, 10)),
	}
	m.nextID++
	return k
}

// Recruit 將候選者移入名冊；入伍時疲勞與傷勢減半（候選期的磨耗
// 視為部分休整）。找不到候選者回傳 nil。
func (m *Roster) Recruit(candidateID int) *KnightRecord {
	for i, c := range m.candidates {
		if c.ID == candidateID {
			m.candidates = append(m.candidates[:i], m.candidates[i+1:]...)
			c.Fatigue /= 2
			c.Injury /= 2
			m.roster = append(m.roster, c)
			m.emit()
			return c.Clone()
		}
	}
	return nil
}

// Fire 將騎士移出名冊並清除其所有裝備引用。
func (m *Roster) Fire(knightID int) bool {
	for i, k := range m.roster {
		if k.ID == knightID {
			m.roster = append(m.roster[:i], m.roster[i+1:]...)
			if m.inv != nil {
				m.inv.ClearAssignmentsForKnight(knightID)
			}
			m.emit()
			return true
		}
	}
	return false
}

// Get 回傳名冊內的騎士（內部指標，跨邊界需 Clone）。
func (m *Roster) Get(knightID int) *KnightRecord {
	for _, k := range m.roster {
		if k.ID == knightID {
			return k
		}
	}
	return nil
}

// RosterList 回傳名冊深複本。
func (m *Roster) RosterList() []*KnightRecord {
	out := make([]*KnightRecord, len(m.roster))
	for i, k := range m.roster {
		out[i] = k.Clone()
	}
	return out
}

// Candidates 回傳候選池深複本。
func (m *Roster) Candidates() []*KnightRecord {
	out := make([]*KnightRecord, len(m.candidates))
	for i, k := range m.candidates {
		out[i] = k.Clone()
	}
	return out
}

// RosterSize 回傳名冊人數。
func (m *Roster) RosterSize() int { return len(m.roster) }

// TotalInjury 回傳名冊傷勢總和（經濟預測用）。
func (m *Roster) TotalInjury() float64 {
	total := 0.0
	for _, k := range m.roster {
		total += k.Injury
	}
	return total
}

// NextID 回傳下一個將被分配的騎士 ID（存檔用）。
func (m *Roster) NextID() int { return m.nextID }

// ApplyConditionAdjustments 批次套用疲勞/傷勢變化，夾制 [0,100]，
// 整批只發出一次事件。
func (m *Roster) ApplyConditionAdjustments(deltas []ConditionDelta) {
	for _, d := range deltas {
		k := m.Get(d.KnightID)
		if k == nil {
			continue
		}
		k.Fatigue = clampFloat(k.Fatigue+d.FatigueDelta, 0, 100)
		k.Injury = clampFloat(k.Injury+d.InjuryDelta, 0, 100)
	}
	m.emit()
}

// ==================== 戰力評分 ====================

// 屬性對附魔對應：strength→武勇、intellect→意志、vitality 以 1.5 計。
var affixScoreWeight = map[data.AffixStat]float64{
	data.AffixStrength:  1.25, // 計入武勇權重
	data.AffixIntellect: 1.20, // 計入意志權重
	data.AffixVitality:  1.5,
}

// 品質固定加成。
var qualityScoreBonus = map[data.Quality]float64{
	data.QualityCrude:      2,
	data.QualityStandard:   5,
	data.QualityFine:       9,
	data.QualityMasterwork: 14,
}

// PowerScore 計算騎士戰力：屬性加權 + 裝備附魔貢獻 + 品質加成，
// 四捨五入為整數。
func (m *Roster) PowerScore(knightID int) int {
	k := m.Get(knightID)
	if k == nil {
		return 0
	}
	score := float64(k.Attributes.Might)*1.25 +
		float64(k.Attributes.Agility)*1.10 +
		float64(k.Attributes.Willpower)*1.20

	for _, instanceID := range k.equippedInstanceIDs() {
		it := m.inv.Get(instanceID)
		if it == nil {
			continue
		}
		for _, a := range it.Affixes {
			score += a.Magnitude * affixScoreWeight[a.Stat]
		}
		score += qualityScoreBonus[it.Quality]
	}
	return int(math.Round(score))
}

func (k *KnightRecord) equippedInstanceIDs() []int {
	ids := make([]int, 0, 2+len(k.Equipment.TrinketIDs))
	if k.Equipment.WeaponID != 0 {
		ids = append(ids, k.Equipment.WeaponID)
	}
	if k.Equipment.ArmorID != 0 {
		ids = append(ids, k.Equipment.ArmorID)
	}
	ids = append(ids, k.Equipment.TrinketIDs...)
	return ids
}

// ==================== 裝備 ====================

// Equip 將庫存物品裝到騎士上。規則：
//   - 武器/防具為互斥單槽，飾品最多 3 個；
//   - 已被「其他」騎士裝備的物品不可裝（須先卸下）；
//   - 同槽換裝時先釋放原佔用者再指派新者，整體為單一原子轉移，
//     僅發出一次快照。
func (m *Roster) Equip(knightID, instanceID int) bool {
	k := m.Get(knightID)
	if k == nil || m.inv == nil {
		return false
	}
	it := m.inv.Get(instanceID)
	if it == nil || it.Kind != data.KindEquipment {
		return false
	}
	if it.EquippedBy != 0 && it.EquippedBy != knightID {
		return false
	}

	prev := 0
	switch it.Slot {
	case data.SlotWeapon:
		prev = k.Equipment.WeaponID
		k.Equipment.WeaponID = instanceID
	case data.SlotArmor:
		prev = k.Equipment.ArmorID
		k.Equipment.ArmorID = instanceID
	case data.SlotTrinket:
		for _, id := range k.Equipment.TrinketIDs {
			if id == instanceID {
				return true // 已裝備
			}
		}
		if len(k.Equipment.TrinketIDs) >= MaxTrinkets {
			return false
		}
		k.Equipment.TrinketIDs = append(k.Equipment.TrinketIDs, instanceID)
	default:
		return false
	}

	m.inv.ReassignToKnight(prev, instanceID, knightID)
	m.emit()
	return true
}

// Unequip 將物品自騎士卸下。
func (m *Roster) Unequip(knightID, instanceID int) bool {
	k := m.Get(knightID)
	if k == nil {
		return false
	}
	removed := false
	if k.Equipment.WeaponID == instanceID {
		k.Equipment.WeaponID = 0
		removed = true
	}
	if k.Equipment.ArmorID == instanceID {
		k.Equipment.ArmorID = 0
		removed = true
	}
	for i, id := range k.Equipment.TrinketIDs {
		if id == instanceID {
			k.Equipment.TrinketIDs = append(k.Equipment.TrinketIDs[:i], k.Equipment.TrinketIDs[i+1:]...)
			removed = true
			break
		}
	}
	if !removed {
		return false
	}
	if m.inv != nil {
		m.inv.ClearAssignment(instanceID)
	}
	m.emit()
	return true
}

// Restore 以存檔內容重建名冊（持久化邊界，深複製輸入）。
func (m *Roster) Restore(roster, candidates []*KnightRecord, nextID int) {
	m.roster = make([]*KnightRecord, len(roster))
	for i, k := range roster {
		m.roster[i] = k.Clone()
	}
	m.candidates = make([]*KnightRecord, len(candidates))
	for i, k := range candidates {
		m.candidates[i] = k.Clone()
	}
	if nextID < 1 {
		nextID = 1
	}
	m.nextID = nextID
	m.emit()
}

func (m *Roster) emit() {
	if m.bus != nil {
		event.Emit(m.bus, event.KnightRosterChanged{
			RosterCount:    len(m.roster),
			CandidateCount: len(m.candidates),
		})
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
