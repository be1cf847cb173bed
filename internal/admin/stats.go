// AngelaMos | 2026
// stats.go

package admin

import (
	"database/sql"
	"runtime"
	"time"

	"github.com/redis/go-redis/v9"
)

type SystemStatsResponse struct {
	Database DatabaseStatus `json:"database"`
	Redis    *RedisStatus   `json:"redis,omitempty"`
	Runtime  RuntimeStats   `json:"runtime"`
	Entities EntityCounts   `json:"entities"`
}

type EntityCounts struct {
	ActiveUsers int `json:"active_users"`
	Posts       int `json:"posts"`
}

type DatabaseStatus struct {
	Healthy bool         `json:"healthy"`
	Stats   *DBPoolStats `json:"stats,omitempty"`
}

type RedisStatus struct {
	Healthy bool            `json:"healthy"`
	Stats   *RedisPoolStats `json:"stats,omitempty"`
}

type DBPoolStats struct {
	MaxOpenConnections int    `json:"max_open_connections"`
	OpenConnections    int    `json:"open_connections"`
	InUse              int    `json:"in_use"`
	Idle               int    `json:"idle"`
	WaitCount          int64  `json:"wait_count"`
	WaitDuration       string `json:"wait_duration"`
	ClosedIdle         int64  `json:"closed_idle"`
	ClosedLifetime     int64  `json:"closed_lifetime"`
}

func newDBPoolStats(s sql.DBStats) *DBPoolStats {
	return &DBPoolStats{
		MaxOpenConnections: s.MaxOpenConnections,
		OpenConnections:    s.OpenConnections,
		InUse:              s.InUse,
		Idle:               s.Idle,
		WaitCount:          s.WaitCount,
		WaitDuration:       s.WaitDuration.String(),
		ClosedIdle:         s.MaxIdleClosed + s.MaxIdleTimeClosed,
		ClosedLifetime:     s.MaxLifetimeClosed,
	}
}

type RedisPoolStats struct {
	Hits       uint32 `json:"hits"`
	Misses     uint32 `json:"misses"`
	Timeouts   uint32 `json:"timeouts"`
	TotalConns uint32 `json:"total_conns"`
	IdleConns  uint32 `json:"idle_conns"`
	StaleConns uint32 `json:"stale_conns"`
}

func newRedisPoolStats(s *redis.PoolStats) *RedisPoolStats {
	if s == nil {
		return nil
	}
	return &RedisPoolStats{
		Hits:       s.Hits,
		Misses:     s.Misses,
		Timeouts:   s.Timeouts,
		TotalConns: s.TotalConns,
		IdleConns:  s.IdleConns,
		StaleConns: s.StaleConns,
	}
}

type RuntimeStats struct {
	GoVersion    string `json:"go_version"`
	Uptime       string `json:"uptime"`
	NumGoroutine int    `json:"num_goroutine"`
	NumCPU       int    `json:"num_cpu"`
	HeapAlloc    uint64 `json:"heap_alloc_bytes"`
	HeapObjects  uint64 `json:"heap_objects"`
	Sys          uint64 `json:"sys_bytes"`
	NumGC        uint32 `json:"num_gc"`
}

func readRuntimeStats(started time.Time) RuntimeStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return RuntimeStats{
		GoVersion:    runtime.Version(),
		Uptime:       time.Since(started).Round(time.Second).String(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		HeapAlloc:    m.HeapAlloc,
		HeapObjects:  m.HeapObjects,
		Sys:          m.Sys,
		NumGC:        m.NumGC,
	}
}
