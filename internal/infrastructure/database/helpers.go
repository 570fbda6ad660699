package database

import (
	"context"
	"fmt"
	"time"

	"library-lending-backend/internal/metrics"
	"library-lending-backend/pkg/logger"
)

// Close đóng tất cả connections trong pool. Safe to call multiple times.
func (db *PostgresDB) Close() error {
	if db.Pool == nil {
		return nil
	}

	logger.Info("[DATABASE] Closing connection pool", nil)
	db.Pool.Close()
	db.Pool = nil
	return nil
}

// PoolStats là snapshot thống kê của connection pool
type PoolStats struct {
	AcquireCount         int64
	AcquireDuration      time.Duration
	AcquiredConns        int32
	CanceledAcquireCount int64
	IdleConns            int32
	MaxConns             int32
	TotalConns           int32
}

// Stats trả về snapshot của connection pool statistics
func (db *PostgresDB) Stats() (*PoolStats, error) {
	if db.Pool == nil {
		return nil, fmt.Errorf("database pool is not initialized")
	}

	raw := db.Pool.Stat()
	return &PoolStats{
		AcquireCount:         raw.AcquireCount(),
		AcquireDuration:      raw.AcquireDuration(),
		AcquiredConns:        raw.AcquiredConns(),
		CanceledAcquireCount: raw.CanceledAcquireCount(),
		IdleConns:            raw.IdleConns(),
		MaxConns:             raw.MaxConns(),
		TotalConns:           raw.TotalConns(),
	}, nil
}

func calculateAvgDuration(totalDuration time.Duration, count int64) time.Duration {
	if count == 0 {
		return 0
	}
	return totalDuration / time.Duration(count)
}

// MonitorPoolHealth publish pool stats lên Prometheus và cảnh báo khi pool gần cạn.
// Chạy trong goroutine riêng, dừng khi ctx bị cancel.
func (db *PostgresDB) MonitorPoolHealth(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			stats, err := db.Stats()
			if err != nil {
				logger.Error("[MONITOR] Failed to get pool stats", err)
				continue
			}

			metrics.DBPoolConnections.WithLabelValues("acquired").Set(float64(stats.AcquiredConns))
			metrics.DBPoolConnections.WithLabelValues("idle").Set(float64(stats.IdleConns))
			metrics.DBPoolConnections.WithLabelValues("total").Set(float64(stats.TotalConns))

			if stats.MaxConns > 0 {
				utilization := float64(stats.AcquiredConns) / float64(stats.MaxConns) * 100
				if utilization > 80 {
					logger.Warn("[MONITOR] High pool utilization", map[string]interface{}{
						"utilization_pct": utilization,
						"acquired":        stats.AcquiredConns,
						"max":             stats.MaxConns,
					})
				}
			}

			if avg := calculateAvgDuration(stats.AcquireDuration, stats.AcquireCount); avg > 100*time.Millisecond {
				logger.Warn("[MONITOR] High acquire latency", map[string]interface{}{
					"avg_acquire": avg.String(),
				})
			}

		case <-ctx.Done():
			return
		}
	}
}
