package coverage_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/coverage-engine/coverage"
)

func TestDaysBetweenInclusive(t *testing.T) {
	tests := []struct {
		name string
		a, b coverage.Date
		want int
	}{
		{"same day", date(2024, time.January, 1), date(2024, time.January, 1), 1},
		{"january", date(2024, time.January, 1), date(2024, time.January, 31), 31},
		{"leap february", date(2024, time.February, 1), date(2024, time.February, 29), 29},
		{"across DST in Europe", date(2024, time.March, 25), date(2024, time.April, 5), 12},
		{"reversed", date(2024, time.January, 31), date(2024, time.January, 1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, coverage.DaysBetweenInclusive(tt.a, tt.b))
		})
	}
}

func TestDaysBetween_LongSpans(t *testing.T) {
	// GIVEN: Spans longer than time.Duration can hold
	// THEN: Day counts stay exact
	assert.Equal(t, 118338, coverage.DaysBetween(date(1700, time.January, 1), date(2024, time.January, 1)))
	assert.Equal(t, -118338, coverage.DaysBetween(date(2024, time.January, 1), date(1700, time.January, 1)))
	assert.Equal(t, 118339, coverage.DaysBetweenInclusive(date(1700, time.January, 1), date(2024, time.January, 1)))
	assert.Equal(t, 1, coverage.DaysBetween(date(1969, time.December, 31), date(1970, time.January, 1)))
}

func TestDateOf_DropsTimeOfDay(t *testing.T) {
	d := coverage.DateOf(time.Date(2024, time.May, 3, 23, 59, 0, 0, time.UTC))
	assert.True(t, d.Equal(date(2024, time.May, 3)))
	assert.Equal(t, 0, coverage.DaysBetween(d, date(2024, time.May, 3)))
}

func TestParseDate(t *testing.T) {
	d, err := coverage.ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", d.String())

	_, err = coverage.ParseDate("29/02/2024")
	assert.Error(t, err)
}

func TestDate_JSON(t *testing.T) {
	type wrapper struct {
		D coverage.Date  `json:"d"`
		P *coverage.Date `json:"p"`
	}

	b, err := json.Marshal(wrapper{D: date(2024, time.March, 1)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"2024-03-01","p":null}`, string(b))

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"d":"2024-03-01","p":"2024-04-01"}`), &w))
	assert.Equal(t, "2024-03-01", w.D.String())
	require.NotNil(t, w.P)
	assert.Equal(t, "2024-04-01", w.P.String())
}

func TestPeriod_Overlaps(t *testing.T) {
	jan := coverage.Period{Start: date(2024, time.January, 1), End: date(2024, time.January, 31)}
	feb := coverage.Period{Start: date(2024, time.February, 1), End: date(2024, time.February, 29)}
	lastJanDay := coverage.Period{Start: date(2024, time.January, 31), End: date(2024, time.February, 5)}

	assert.False(t, jan.Overlaps(feb))
	assert.True(t, jan.Overlaps(lastJanDay))
	assert.True(t, lastJanDay.Overlaps(feb))
	assert.True(t, jan.Contains(date(2024, time.January, 31)))
	assert.False(t, jan.Contains(date(2024, time.February, 1)))
}

func TestParsePaymentMethod(t *testing.T) {
	m, err := coverage.ParsePaymentMethod(" cnam ")
	require.NoError(t, err)
	assert.True(t, m.IsCNAM())
	assert.Equal(t, coverage.PayerCNAM, m.Payer())

	m, err = coverage.ParsePaymentMethod("cash")
	require.NoError(t, err)
	assert.Equal(t, coverage.PayerPatient, m.Payer())

	_, err = coverage.ParsePaymentMethod("bitcoin")
	assert.ErrorIs(t, err, coverage.ErrUnknownPaymentMethod)
	assert.True(t, coverage.IsClientError(err))
}
