package service

import "time"

// Clock is injected into services that make time-window decisions.
type Clock func() time.Time

func SystemClock() time.Time {
	return time.Now().UTC()
}
