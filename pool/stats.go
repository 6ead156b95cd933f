package pool

// PoolStats is a point-in-time snapshot of a pool.
type PoolStats struct {
	Name        string  `json:"name"`
	Idle        int     `json:"idle"`
	Active      int     `json:"active"`
	Unhealthy   int     `json:"unhealthy"`
	TotalUses   uint64  `json:"total_uses"`
	TotalErrors uint64  `json:"total_errors"`
	ErrorRate   float64 `json:"error_rate"`
	QueueDepth  int     `json:"queue_depth"`
	MinSize     int     `json:"min_size"`
	MaxSize     int     `json:"max_size"`
	Closed      bool    `json:"closed"`
}

// Stats returns a snapshot of the pool's current state and cumulative
// counters. The snapshot is taken under the pool lock; individual records
// are not locked beyond that.
func (p *Pool[C]) Stats() PoolStats {
	s := PoolStats{
		Name:    p.cfg.Name,
		MinSize: p.cfg.MinSize,
		MaxSize: p.cfg.MaxSize,
		Closed:  p.closed.Load(),
	}

	p.mu.Lock()
	s.QueueDepth = len(p.idle)
	s.TotalUses = p.retiredUses
	s.TotalErrors = p.retiredErrors
	for _, rec := range p.records {
		switch rec.state {
		case StateIdle:
			s.Idle++
		case StateActive:
			s.Active++
		case StateUnhealthy:
			s.Unhealthy++
		}
		s.TotalUses += rec.stats.totalUses
		s.TotalErrors += rec.stats.totalErrors
	}
	p.mu.Unlock()

	if s.TotalUses > 0 {
		s.ErrorRate = float64(s.TotalErrors) / float64(s.TotalUses)
	}
	return s
}
