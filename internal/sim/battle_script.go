package sim

import "math"

// RoundEntry 是戰鬥腳本的一回合：雙方在該回合造成的傷害。
type RoundEntry struct {
	Round       int
	DamageDealt int
	DamageTaken int
}

// BattleScript 是戰後重建的逐回合敘事資料，純展示用途，
// 由彙總報告確定性衍生，不回寫任何模擬狀態。
type BattleScript struct {
	Rounds []RoundEntry
}

// BuildScript 依回合數把彙總傷害拆成逐回合曲線。權重取正弦半波，
// 中段回合份額最高；整數分配採最大餘數法，兩欄各自的總和
// 與報告的彙總值完全一致。
func BuildScript(report BattleReport) BattleScript {
	n := report.Rounds
	if n <= 0 {
		return BattleScript{}
	}

	weights := make([]float64, n)
	total := 0.0
	for i := 0; i < n; i++ {
		w := math.Sin(math.Pi * (float64(i) + 0.5) / float64(n))
		weights[i] = w
		total += w
	}
	for i := range weights {
		weights[i] /= total
	}

	dealt := apportion(report.DamageDealt, weights)
	taken := apportion(report.DamageTaken, weights)

	rounds := make([]RoundEntry, n)
	for i := 0; i < n; i++ {
		rounds[i] = RoundEntry{Round: i + 1, DamageDealt: dealt[i], DamageTaken: taken[i]}
	}
	return BattleScript{Rounds: rounds}
}

// apportion 依權重把整數總量拆成各份，地板後把餘數依小數部分
// 由大到小補回，保證各份總和等於原總量。
func apportion(total int, weights []float64) []int {
	n := len(weights)
	parts := make([]int, n)
	if total <= 0 {
		return parts
	}

	type remainder struct {
		index int
		frac  float64
	}
	rem := make([]remainder, 0, n)
	assigned := 0
	for i, w := range weights {
		exact := float64(total) * w
		floor := int(math.Floor(exact))
		parts[i] = floor
		assigned += floor
		rem = append(rem, remainder{index: i, frac: exact - float64(floor)})
	}

	left := total - assigned
	for left > 0 {
		best := 0
		for j := 1; j < len(rem); j++ {
			if rem[j].frac > rem[best].frac {
				best = j
			}
		}
		parts[rem[best].index]++
		rem[best].frac = -1
		left--
	}
	return parts
}
