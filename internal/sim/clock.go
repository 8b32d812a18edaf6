package sim

import "time"

// allowedTimeScales 是可用的時間倍率（0 即暫停）。
var allowedTimeScales = []float64{0, 1, 2, 4}

// Clock 負責時間推進：倍率先乘、秒數後累積，跨過週界即觸發
// 週進位回呼，單次 Update 內每個跨過的週界各觸發一次。
type Clock struct {
	timeScale   float64
	weekSeconds float64
	accumulated float64
	week        int

	onWeek func(week int)
}

func NewClock(weekSeconds float64, onWeek func(week int)) *Clock {
	if weekSeconds <= 0 {
		weekSeconds = 300
	}
	return &Clock{
		timeScale:   1,
		weekSeconds: weekSeconds,
		onWeek:      onWeek,
	}
}

// TimeScale 回傳目前倍率。
func (c *Clock) TimeScale() float64 { return c.timeScale }

// SetTimeScale 設定倍率，僅接受預設檔位。
func (c *Clock) SetTimeScale(scale float64) bool {
	for _, s := range allowedTimeScales {
		if s == scale {
			c.timeScale = scale
			return true
		}
	}
	return false
}

// Week 回傳目前週數（自 0 起算）。
func (c *Clock) Week() int { return c.week }

// Update 推進時間並回傳縮放後的經過秒數。
func (c *Clock) Update(dt time.Duration) float64 {
	scaled := dt.Seconds() * c.timeScale
	if scaled <= 0 {
		return 0
	}
	c.accumulated += scaled
	for c.accumulated >= c.weekSeconds {
		c.accumulated -= c.weekSeconds
		c.week++
		if c.onWeek != nil {
			c.onWeek(c.week)
		}
	}
	return scaled
}

// Restore 自存檔回寫時鐘狀態。
func (c *Clock) Restore(timeScale float64, week int) {
	if !c.SetTimeScale(timeScale) {
		c.timeScale = 1
	}
	c.week = week
	c.accumulated = 0
}
