package postgres

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthMonitor pings the store on an interval. After Threshold consecutive
// failures it reports one fatal error on Fatal and stops. It never exits the
// process; the host decides how to restart.
type HealthMonitor struct {
	Pinger    Pinger
	Interval  time.Duration
	Timeout   time.Duration
	Threshold int
	Logger    *logrus.Logger

	fatal chan error
	once  sync.Once
}

func NewHealthMonitor(p Pinger, interval, timeout time.Duration, threshold int, logger *logrus.Logger) *HealthMonitor {
	if threshold <= 0 {
		threshold = 1
	}
	return &HealthMonitor{
		Pinger:    p,
		Interval:  interval,
		Timeout:   timeout,
		Threshold: threshold,
		Logger:    logger,
		fatal:     make(chan error, 1),
	}
}

// Fatal delivers at most one error.
func (m *HealthMonitor) Fatal() <-chan error { return m.fatal }

// Run blocks until ctx is done or the threshold is reached.
func (m *HealthMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.Interval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		err := m.ping(ctx)
		if err == nil {
			if failures > 0 && m.Logger != nil {
				m.Logger.WithField("failures", failures).Info("credential store recovered")
			}
			failures = 0
			continue
		}
		if ctx.Err() != nil {
			return
		}
		failures++
		if m.Logger != nil {
			m.Logger.WithError(err).WithField("failures", failures).Warn("credential store ping failed")
		}
		if failures >= m.Threshold {
			m.once.Do(func() {
				m.fatal <- fmt.Errorf("credential store unhealthy after %d consecutive failures: %w", failures, err)
			})
			return
		}
	}
}

func (m *HealthMonitor) ping(ctx context.Context) error {
	if m.Timeout <= 0 {
		return m.Pinger.Ping(ctx)
	}
	c, cancel := context.WithTimeout(ctx, m.Timeout)
	defer cancel()
	return m.Pinger.Ping(c)
}
