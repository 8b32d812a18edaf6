package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSetTimeScale(t *testing.T) {
	c := NewClock(300, nil)
	cases := []struct {
		scale float64
		want  bool
	}{
		{0, true},
		{1, true},
		{2, true},
		{4, true},
		{3, false},
		{-1, false},
		{0.5, false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, c.SetTimeScale(tc.scale), "scale %v", tc.scale)
	}

	// 被拒絕的檔位不得改動倍率。
	c.SetTimeScale(2)
	c.SetTimeScale(7)
	require.Equal(t, 2.0, c.TimeScale())
}

func TestUpdateScalesElapsed(t *testing.T) {
	c := NewClock(300, nil)
	c.SetTimeScale(4)
	require.Equal(t, 8.0, c.Update(2*time.Second))

	c.SetTimeScale(0)
	require.Zero(t, c.Update(10*time.Second))
	require.Zero(t, c.Week())
}

func TestUpdateFiresWeekBoundary(t *testing.T) {
	var fired []int
	c := NewClock(10, func(week int) { fired = append(fired, week) })

	c.Update(9 * time.Second)
	require.Empty(t, fired)

	c.Update(1 * time.Second)
	require.Equal(t, []int{1}, fired)
	require.Equal(t, 1, c.Week())
}

func TestUpdateFiresEachCrossedWeek(t *testing.T) {
	var fired []int
	c := NewClock(10, func(week int) { fired = append(fired, week) })
	c.SetTimeScale(4)

	// 8 秒 ×4 = 32 秒，一次跨過三個週界。
	c.Update(8 * time.Second)
	require.Equal(t, []int{1, 2, 3}, fired)
}

func TestClockRestore(t *testing.T) {
	fires := 0
	c := NewClock(10, func(int) { fires++ })
	c.Update(7 * time.Second)

	c.Restore(2, 5)
	require.Equal(t, 5, c.Week())
	require.Equal(t, 2.0, c.TimeScale())

	// 累積秒數清零：7 秒的殘留不得影響下一個週界。
	c.Update(4 * time.Second) // ×2 = 8 秒
	require.Zero(t, fires)
	c.Update(1 * time.Second) // 補滿 10 秒
	require.Equal(t, 1, fires)
	require.Equal(t, 6, c.Week())
}

func TestClockRestoreBadScale(t *testing.T) {
	c := NewClock(10, nil)
	c.Restore(9, 2)
	require.Equal(t, 1.0, c.TimeScale())
}
