package service

import (
	"fmt"
	"time"

	"task-notifier/internal/model"
)

// ComputeFireTime combines a task's send date and HH:MM execution time into
// the concrete instant at which it must fire, in the given location.
//
// MONTHLY and YEARLY tasks landing on a Saturday or Sunday are moved forward
// to the next Monday at the same time of day. DAILY tasks are never moved.
func ComputeFireTime(sendDate time.Time, executionTime string, periodicity model.Periodicity, loc *time.Location) (time.Time, error) {
	clock, err := time.Parse("15:04", executionTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid execution time %q: %w", executionTime, err)
	}

	fire := time.Date(
		sendDate.Year(),
		sendDate.Month(),
		sendDate.Day(),
		clock.Hour(),
		clock.Minute(),
		0, 0,
		loc,
	)

	if periodicity.AdjustsForWeekend() {
		switch fire.Weekday() {
		case time.Saturday:
			fire = fire.AddDate(0, 0, 2)
		case time.Sunday:
			fire = fire.AddDate(0, 0, 1)
		}
	}

	return fire, nil
}
