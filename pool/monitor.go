package pool

import (
	"context"
	"time"
)

// runMonitor is the background health-monitor loop started by Initialize and
// cancelled cooperatively by Close. An in-flight sweep is allowed to finish;
// Close joins it before tearing connections down.
func (p *Pool[C]) runMonitor() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.HealthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
			p.sweep(context.Background())
		}
	}
}

// sweep probes every idle connection, retires stale ones and ones that have
// failed HealthFailureLimit consecutive probes, then refills the pool to
// MinSize. Active connections are never probed: they are not in the
// availability queue, so draining the queue naturally skips them.
func (p *Pool[C]) sweep(ctx context.Context) {
	var held []*record[C]
drain:
	for {
		select {
		case rec := <-p.idle:
			held = append(held, rec)
		default:
			break drain
		}
	}

	for _, rec := range held {
		if rec.isStale(p.cfg.MaxIdleTime) {
			p.log.Info("retiring stale connection",
				"conn_id", rec.id,
				"idle_for", time.Since(rec.stats.lastUsedAt))
			p.retire(rec)
			continue
		}

		if herr := p.connector.CheckHealth(ctx, rec.conn); herr != nil {
			p.obs.HealthCheck(p.cfg.Name, false)
			p.mu.Lock()
			rec.stats.healthFailures++
			failures := rec.stats.healthFailures
			p.mu.Unlock()

			if failures >= p.cfg.HealthFailureLimit {
				p.mu.Lock()
				rec.markUnhealthy(herr)
				p.mu.Unlock()
				p.log.Warn("retiring unhealthy connection",
					"conn_id", rec.id,
					"consecutive_failures", failures,
					"error", herr)
				p.retire(rec)
				continue
			}

			// Not fatal yet; a transient blip should not churn the pool.
			p.log.Debug("health check failed",
				"conn_id", rec.id,
				"consecutive_failures", failures,
				"error", herr)
			p.enqueue(rec)
			continue
		}

		p.obs.HealthCheck(p.cfg.Name, true)
		p.mu.Lock()
		rec.stats.healthFailures = 0
		p.mu.Unlock()
		p.enqueue(rec)
	}

	p.refill(ctx)
}

// refill creates connections until the tracked count reaches MinSize.
// Failures are logged and retried on the next sweep, never propagated.
func (p *Pool[C]) refill(ctx context.Context) {
	for p.trackedCount() < p.cfg.MinSize {
		rec, err := p.createTracked(ctx)
		if err != nil {
			if !IsClosed(err) {
				p.log.Warn("failed to refill pool", "error", err)
			}
			return
		}
		p.enqueue(rec)
	}
}
