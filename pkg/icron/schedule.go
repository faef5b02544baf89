package icron

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

type TriggerInfo struct {
	Next       time.Time
	Last       time.Time
	Expression string

	TimeSinceLast time.Duration
	TimeUntilNext time.Duration
}

// GetTriggerInfo reports the last and next fire times of a standard
// five-field cron expression relative to refTime. Last is zero when the
// expression did not fire within the previous year.
func GetTriggerInfo(cronExpr string, refTime time.Time) (*TriggerInfo, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression: %w", err)
	}

	nextTime := schedule.Next(refTime)

	var prevTime time.Time
	for i := range 366 * 24 {
		checkTime := refTime.Add(-time.Minute - time.Duration(i)*time.Hour)
		candidate := schedule.Next(checkTime)
		if !candidate.After(refTime) {
			prevTime = candidate
			break
		}
	}

	// walk forward to the latest fire time that is not after refTime
	if !prevTime.IsZero() {
		for next := schedule.Next(prevTime); !next.After(refTime); next = schedule.Next(next) {
			prevTime = next
		}
	}

	info := &TriggerInfo{
		Expression: cronExpr,
		Next:       nextTime,
		Last:       prevTime,
	}

	if !prevTime.IsZero() {
		info.TimeSinceLast = refTime.Sub(prevTime)
	}
	info.TimeUntilNext = nextTime.Sub(refTime)

	return info, nil
}
