package team

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSeasonLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "2026", SeasonLabel(SeasonFormatSingleYear, 2026))
	assert.Equal(t, "2025-2026", SeasonLabel(SeasonFormatYearRange, 2025))
	assert.Equal(t, "2026", SeasonLabel("unknown", 2026))
}

func TestSeasonStartYear(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		now  time.Time
		want int
	}{
		{name: "mid season january", now: time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC), want: 2025},
		{name: "pre season july", now: time.Date(2026, time.July, 31, 0, 0, 0, 0, time.UTC), want: 2025},
		{name: "season rollover august", now: time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC), want: 2026},
		{name: "late fall", now: time.Date(2026, time.November, 20, 0, 0, 0, 0, time.UTC), want: 2026},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, SeasonStartYear(tc.now))
		})
	}
}

func TestNormalizeSeasonFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, SeasonFormatYearRange, NormalizeSeasonFormat("Year_Range"))
	assert.Equal(t, SeasonFormatYearRange, NormalizeSeasonFormat("cross_year"))
	assert.Equal(t, SeasonFormatSingleYear, NormalizeSeasonFormat(""))
	assert.Equal(t, SeasonFormatSingleYear, NormalizeSeasonFormat("calendar"))
}
