package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock abstracts time.Now so calendar-day logic stays testable. All ledger
// timestamps use the server clock in UTC; client time is never trusted.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

func NewSystemClock() Clock {
	return systemClock{}
}

var Module = fx.Module("clock",
	fx.Provide(NewSystemClock),
)
