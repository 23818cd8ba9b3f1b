package xsink

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUntilMidnight(t *testing.T) {
	now := time.Date(2024, time.May, 1, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Hour, untilMidnight(now))

	atMidnight := time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 24*time.Hour, untilMidnight(atMidnight))

	// 按 now 所在时区计算
	loc := time.FixedZone("", 8*3600)
	local := time.Date(2024, time.May, 1, 22, 30, 0, 0, loc)
	assert.Equal(t, 90*time.Minute, untilMidnight(local))
}

func TestLocalLocation(t *testing.T) {
	c := newFakeClock(day1)
	c.offset = -5 * time.Hour
	loc, err := localLocation(c)
	require.NoError(t, err)

	_, offset := day1.In(loc).Zone()
	assert.Equal(t, -5*3600, offset)
}

func TestSystemClock(t *testing.T) {
	before := time.Now()
	assert.False(t, SystemClock.Now().Before(before))

	offset, err := SystemClock.LocalOffset()
	require.NoError(t, err)
	_, want := time.Now().Zone()
	assert.Equal(t, time.Duration(want)*time.Second, offset)
}
