// Package globaltime is the clock behind session expiry, so tests can pin it.
package globaltime

import (
	"sync"
	"time"
)

var (
	mu      sync.RWMutex
	nowFunc = time.Now
)

func Now() time.Time {
	mu.RLock()
	defer mu.RUnlock()
	return nowFunc()
}

func UTC() time.Time {
	return Now().UTC()
}

// Freeze pins the clock to t until the returned restore func runs.
func Freeze(t time.Time) (restore func()) {
	mu.Lock()
	previous := nowFunc
	nowFunc = func() time.Time { return t }
	mu.Unlock()

	return func() {
		mu.Lock()
		defer mu.Unlock()
		nowFunc = previous
	}
}
