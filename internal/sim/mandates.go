package sim

import (
	"errors"
	"fmt"

	"github.com/dragonfell/server/internal/data"
	"github.com/dragonfell/server/internal/rng"
)

// DefaultMandateDraw 是每次覲見抽出的敕令數。
const DefaultMandateDraw = 3

// ErrMandatesUninitialized 表示敕令系統在載入牌池前被使用，
// 屬呼叫順序錯誤。
var ErrMandatesUninitialized = errors.New("sim: mandate system not initialized")

// MandateMilestone 是敕令時間線上的一個節點。
type MandateMilestone struct {
	Label       string
	Week        int
	Description string
}

// MandateCard 是一張抽出的敕令卡，附帶衍生的三點時間線。
type MandateCard struct {
	Def        data.MandateDef
	Milestones []MandateMilestone
}

// Mandates 管理王室敕令牌池與抽選。
type Mandates struct {
	table *data.MandateTable
}

func NewMandates(table *data.MandateTable) *Mandates {
	return &Mandates{table: table}
}

// Draw 自牌池不放回抽出 count 張互異的敕令卡。牌池不足時回傳
// 全部；系統未初始化回傳錯誤。
func (m *Mandates) Draw(count int, r *rng.Source) ([]MandateCard, error) {
	if m.table == nil {
		return nil, ErrMandatesUninitialized
	}
	if count <= 0 {
		count = DefaultMandateDraw
	}

	pool := m.table.All()
	if count > len(pool) {
		count = len(pool)
	}

	// 隨機索引移除法：抽一張就從池中剔除，保證互異。
	cards := make([]MandateCard, 0, count)
	for i := 0; i < count; i++ {
		idx := r.IntN(len(pool))
		def := pool[idx]
		pool = append(pool[:idx], pool[idx+1:]...)
		cards = append(cards, MandateCard{
			Def:        def,
			Milestones: BuildMilestones(def),
		})
	}
	return cards, nil
}

// Get 取單張敕令定義。
func (m *Mandates) Get(mandateID string) (*data.MandateDef, error) {
	if m.table == nil {
		return nil, ErrMandatesUninitialized
	}
	return m.table.Get(mandateID), nil
}

// BuildMilestones 由敕令的期限與首要條件衍生三點時間線：頒布、
// 中期複核、期滿覲見。純函式，同一張敕令永遠得到相同時間線。
func BuildMilestones(def data.MandateDef) []MandateMilestone {
	duration := def.DurationWeeks
	if duration < 1 {
		duration = 1
	}
	focus := "the crown's will"
	if len(def.Requirements) > 0 {
		focus = def.Requirements[0]
	}
	return []MandateMilestone{
		{
			Label:       "proclaimed",
			Week:        0,
			Description: fmt.Sprintf("The mandate %q is proclaimed before the court.", def.Title),
		},
		{
			Label:       "reviewed",
			Week:        (duration + 1) / 2,
			Description: fmt.Sprintf("The chancellery reviews progress on %s.", focus),
		},
		{
			Label:       "audience",
			Week:        duration,
			Description: "A royal audience passes final judgement on the mandate.",
		},
	}
}
