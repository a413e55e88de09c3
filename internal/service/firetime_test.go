package service

import (
	"testing"
	"time"

	"task-notifier/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeFireTime(t *testing.T) {
	date := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name          string
		sendDate      time.Time
		executionTime string
		periodicity   model.Periodicity
		want          time.Time
	}{
		{
			name:          "monthly task on saturday moves to monday",
			sendDate:      date(2024, time.June, 15),
			executionTime: "10:00",
			periodicity:   model.PeriodicityMonthly,
			want:          time.Date(2024, time.June, 17, 10, 0, 0, 0, time.UTC),
		},
		{
			name:          "yearly task on sunday moves to monday",
			sendDate:      date(2024, time.June, 16),
			executionTime: "08:30",
			periodicity:   model.PeriodicityYearly,
			want:          time.Date(2024, time.June, 17, 8, 30, 0, 0, time.UTC),
		},
		{
			name:          "daily task on saturday is not moved",
			sendDate:      date(2024, time.June, 15),
			executionTime: "10:00",
			periodicity:   model.PeriodicityDaily,
			want:          time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC),
		},
		{
			name:          "monthly task on a weekday is not moved",
			sendDate:      date(2024, time.June, 18),
			executionTime: "23:45",
			periodicity:   model.PeriodicityMonthly,
			want:          time.Date(2024, time.June, 18, 23, 45, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeFireTime(tt.sendDate, tt.executionTime, tt.periodicity, time.UTC)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeFireTime_InvalidExecutionTime(t *testing.T) {
	_, err := ComputeFireTime(time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC), "25:99", model.PeriodicityDaily, time.UTC)
	assert.Error(t, err)
}
