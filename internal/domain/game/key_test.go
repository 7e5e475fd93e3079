package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyMergesAcrossProviderSpellings(t *testing.T) {
	t.Parallel()

	a := Key("2026-01-10", "KK Partizan", "Crvena Zvezda", "ABA League")
	b := Key("2026-01-10", "Partizan Belgrade", "BC Crvena Zvezda", "Adriatic League")

	// Different league labels must not split the key for full-length names.
	assert.Equal(t, "2026-01-10|partizan|crvenazvezda", a)
	assert.NotEqual(t, a, b) // spellings differ beyond suffix stripping
}

func TestKeyShortNamesIncludeLeague(t *testing.T) {
	t.Parallel()

	a := Key("2026-01-10", "Rio", "Oviedo", "Liga ACB")
	b := Key("2026-01-10", "Rio", "Oviedo", "LEB Oro")

	assert.NotEqual(t, a, b)
	assert.Contains(t, a, "|ligaacb")
}

func TestKeyOrderSensitive(t *testing.T) {
	t.Parallel()

	home := Key("2026-01-10", "Valencia", "Baskonia", "Liga ACB")
	away := Key("2026-01-10", "Baskonia", "Valencia", "Liga ACB")
	assert.NotEqual(t, home, away)
}

func TestFormatDateKey(t *testing.T) {
	t.Parallel()

	madrid, err := time.LoadLocation("Europe/Madrid")
	assert.NoError(t, err)

	// 20:30 local on Jan 10 is Jan 10 even though it is already Jan 11 in
	// parts of Asia.
	local := time.Date(2026, time.January, 10, 20, 30, 0, 0, madrid)
	assert.Equal(t, "2026-01-10", FormatDateKey(local))
}

func TestByDate(t *testing.T) {
	t.Parallel()

	games := []Game{
		{GameKey: "a", DateKey: "2026-01-10"},
		{GameKey: "b", DateKey: "2026-01-11"},
		{GameKey: "c", DateKey: "2026-01-10"},
	}

	byDay := ByDate(games)
	assert.Len(t, byDay, 2)
	assert.Equal(t, "a", byDay["2026-01-10"][0].GameKey)
	assert.Equal(t, "c", byDay["2026-01-10"][1].GameKey)
}

func TestReportedAndFinished(t *testing.T) {
	t.Parallel()

	h, a := 81, 77
	g := Game{HomeScore: &h, AwayScore: &a, Status: StatusFinal}
	assert.True(t, g.Reported())
	assert.True(t, g.Finished())

	assert.False(t, Game{Status: StatusLive}.Finished())
	assert.False(t, Game{HomeScore: &h}.Reported())
}
