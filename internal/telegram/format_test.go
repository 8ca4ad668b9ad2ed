package telegram

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatTimeUsesMyanmarOffset(t *testing.T) {
	// 12:00 UTC is 18:30 in Myanmar (UTC+6:30).
	ts := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "18:30:00 28/08/26", FormatTime(ts))
}

func TestFormatDateRollsOverMidnight(t *testing.T) {
	// 20:00 UTC is already the next day in Myanmar.
	ts := time.Date(2026, 8, 28, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, "29/08/2026", FormatDate(ts))
}
