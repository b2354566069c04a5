package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "full day · 8 hours", FormatDuration(8))
	assert.Equal(t, "full day · 12 hours", FormatDuration(12))
	assert.Equal(t, "half day · 4 hours", FormatDuration(4))
	assert.Equal(t, "half day · 7.5 hours", FormatDuration(7.5))
	assert.Equal(t, "2 hours", FormatDuration(2))
	assert.Equal(t, "3.9 hours", FormatDuration(3.9))
	assert.Equal(t, "0 hours", FormatDuration(-1))
}

func TestFormatDurationTierMatchesRoundedLabel(t *testing.T) {
	assert.Equal(t, "full day · 8 hours", FormatDuration(7.96))
	assert.Equal(t, "half day · 4 hours", FormatDuration(3.96))
	assert.Equal(t, "half day · 7.9 hours", FormatDuration(7.94))
	assert.Equal(t, "3.9 hours", FormatDuration(3.94))
}

func TestFormatDateWithWeekday(t *testing.T) {
	assert.Equal(t, "2025-01-01 Wednesday", FormatDateWithWeekday(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-01-05 Sunday", FormatDateWithWeekday(time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-01-06 Monday", FormatDateWithWeekday(time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)))
}

func TestFormatDateLabel(t *testing.T) {
	assert.Equal(t, "2024-02-29 Thursday", FormatDateLabel("2024-02-29"))
	assert.Equal(t, "garbage", FormatDateLabel("garbage"))
}
