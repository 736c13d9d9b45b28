package postgres

import "context"

// HealthCheck reports PostgreSQL reachability for the health endpoint.
type HealthCheck struct {
	pool Pool
}

func NewHealthCheck(pool Pool) *HealthCheck {
	return &HealthCheck{pool: pool}
}

// Ping runs a trivial query through the pool. A pool that connects but
// cannot execute still counts as unhealthy.
func (h *HealthCheck) Ping(ctx context.Context) error {
	var one int
	return h.pool.QueryRow(ctx, "SELECT 1").Scan(&one)
}

func (h *HealthCheck) Name() string {
	return "postgresql"
}
