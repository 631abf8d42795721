package application

import "time"

// Clock interface supaya durasi dan timestamp audit bisa ditest
type Clock interface {
	Now() time.Time
}

// SystemClock implementasi default, pakai time.Now()
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Since is time.Since against c.
func Since(c Clock, t time.Time) time.Duration { return c.Now().Sub(t) }
