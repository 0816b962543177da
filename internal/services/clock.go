package services

import "time"

// Clock supplies creation timestamps.
type Clock func() time.Time

func SystemClock() Clock {
	return func() time.Time { return time.Now().UTC() }
}
