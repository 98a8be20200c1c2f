package feature

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/enrolscan/internal/aggregate"
	"github.com/roach88/enrolscan/internal/dataset"
	"github.com/roach88/enrolscan/internal/model"
)

func day(y int, m time.Month, d int) dataset.Date {
	return dataset.Date{Year: y, Month: m, Day: d}
}

func TestEngineerIndicators(t *testing.T) {
	days := []aggregate.DistrictDay{
		{
			Day:      day(2025, time.March, 31), // a Monday
			State:    "Bihar",
			District: "Patna",

			EnrolUnder5: 10,
			EnrolYouth:  30,
			EnrolAdult:  60,
			EnrolCount:  4,

			DemoYouth: 5,
			DemoAdult: 15,
			DemoCount: 3,

			BioYouth: 2,
			BioAdult: 8,
			BioCount: 1,
		},
	}

	rows := Engineer(days, model.Default().Calendar)
	require.Len(t, rows, 1)
	r := rows[0]

	assert.Equal(t, int64(100), r.TotalEnrol)
	assert.Equal(t, int64(20), r.TotalDemo)
	assert.Equal(t, int64(10), r.TotalBio)

	assert.Equal(t, int64(1), r.DemoEnrolGap)
	assert.Equal(t, int64(3), r.BioEnrolGap)
	assert.Equal(t, int64(2), r.BioDemoGap)

	assert.Equal(t, 75.0, r.DemoCompletionRate)
	assert.Equal(t, 25.0, r.BioCompletionRate)

	assert.Equal(t, 0.3, r.YouthRatioEnrol)
	assert.Equal(t, 0.25, r.YouthRatioDemo)
	assert.Equal(t, 0.2, r.YouthRatioBio)

	assert.Equal(t, 3, r.Month)
	assert.Equal(t, 1, r.Quarter)
	assert.Equal(t, 0, r.DayOfWeek)
	assert.True(t, r.IsQuarterEnd)
	assert.False(t, r.IsHarvest)
	assert.True(t, r.IsFestival)
}

func TestEngineerQuietDistrict(t *testing.T) {
	days := []aggregate.DistrictDay{
		{Day: day(2025, time.June, 15), State: "Goa", District: "North Goa"},
	}

	rows := Engineer(days, model.Default().Calendar)
	require.Len(t, rows, 1)
	r := rows[0]

	// No enrolment activity means nothing is pending, not everything.
	assert.Equal(t, 100.0, r.DemoCompletionRate)
	assert.Equal(t, 100.0, r.BioCompletionRate)

	assert.Equal(t, 0.0, r.YouthRatioEnrol)
	assert.Equal(t, 0.0, r.YouthRatioDemo)
	assert.Equal(t, 0.0, r.YouthRatioBio)

	assert.Equal(t, int64(0), r.DemoEnrolGap)
	assert.Equal(t, int64(0), r.BioEnrolGap)
}

func TestEngineerCalendarFlags(t *testing.T) {
	cal := model.Default().Calendar

	tests := []struct {
		name       string
		d          dataset.Date
		month      int
		quarter    int
		dayOfWeek  int
		quarterEnd bool
		harvest    bool
		festival   bool
	}{
		{"april harvest", day(2025, time.April, 10), 4, 2, 3, false, true, true},
		{"june quarter end", day(2025, time.June, 15), 6, 2, 6, true, false, false},
		{"november harvest festival", day(2025, time.November, 3), 11, 4, 0, false, true, true},
		{"plain february", day(2025, time.February, 5), 2, 1, 2, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := Engineer([]aggregate.DistrictDay{{Day: tt.d, State: "Kerala", District: "Idukki"}}, cal)
			require.Len(t, rows, 1)
			r := rows[0]

			assert.Equal(t, tt.month, r.Month)
			assert.Equal(t, tt.quarter, r.Quarter)
			assert.Equal(t, tt.dayOfWeek, r.DayOfWeek)
			assert.Equal(t, tt.quarterEnd, r.IsQuarterEnd)
			assert.Equal(t, tt.harvest, r.IsHarvest)
			assert.Equal(t, tt.festival, r.IsFestival)
		})
	}
}

func TestEngineerPreservesOrder(t *testing.T) {
	days := []aggregate.DistrictDay{
		{Day: day(2025, time.January, 2), State: "Assam", District: "Jorhat"},
		{Day: day(2025, time.January, 1), State: "Bihar", District: "Gaya"},
	}

	rows := Engineer(days, model.Default().Calendar)
	require.Len(t, rows, 2)
	assert.Equal(t, "Jorhat", rows[0].District)
	assert.Equal(t, "Gaya", rows[1].District)
}
