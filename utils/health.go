package utils

import (
	"context"
	"sync"
	"time"
)

// Pinger checks one backing service.
type Pinger func(ctx context.Context) error

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Services  map[string]bool `json:"services"`
	CheckedAt time.Time       `json:"checkedAt"`
}

var (
	currentHealth HealthStatus
	mu            sync.RWMutex
)

// GetHealthStatus returns latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	mu.RLock()
	defer mu.RUnlock()
	return currentHealth
}

// CheckHealth pings every service once and stores the snapshot.
func CheckHealth(ctx context.Context, pingers map[string]Pinger) HealthStatus {
	status := HealthStatus{Services: make(map[string]bool, len(pingers)), CheckedAt: time.Now()}
	for name, ping := range pingers {
		pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		status.Services[name] = ping(pctx) == nil
		cancel()
	}

	mu.Lock()
	currentHealth = status
	mu.Unlock()
	return status
}

// StartHealthMonitor performs periodic health checks until ctx is done.
func StartHealthMonitor(ctx context.Context, interval time.Duration, pingers map[string]Pinger) {
	CheckHealth(ctx, pingers)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				CheckHealth(ctx, pingers)
			}
		}
	}()
}
