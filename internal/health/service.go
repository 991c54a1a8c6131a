// Package health reports runtime, traffic and dependency status for the API.
package health

import (
	"context"
	"encoding/json"
	"runtime"
	"strconv"
	"time"

	"hostel-backend/internal/domain"
	"hostel-backend/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// DBPinger is optional. If nil, the database is reported as disabled.
type DBPinger interface {
	Ping() error
}

// SnapshotSource is the read side of the housing store.
type SnapshotSource interface {
	Snapshot() domain.Snapshot
}

type CollectResult struct {
	Status       string               `json:"status"`
	Runtime      RuntimeInfo          `json:"runtime"`
	Traffic      TrafficInfo          `json:"traffic"`
	Housing      *HousingInfo         `json:"housing,omitempty"`
	Dependencies map[string]DepStatus `json:"dependencies"`
}

type RuntimeInfo struct {
	UptimeSeconds int64      `json:"uptimeSeconds"`
	Memory        MemoryInfo `json:"memory"`
	Goroutines    int        `json:"goroutines"`
	Platform      string     `json:"platform"`
	GoVersion     string     `json:"goVersion"`
}

type MemoryInfo struct {
	Alloc    int `json:"alloc"`
	HeapUsed int `json:"heapUsed"`
}

type TrafficInfo struct {
	TotalRequests   int         `json:"totalRequests"`
	SuccessCount    int         `json:"successCount"`
	FailedCount     int         `json:"failedCount"`
	SuccessRate     string      `json:"successRate"`
	AvgResponseTime interface{} `json:"avgResponseTime"`
	LastRequest     interface{} `json:"lastRequest"`
}

// HousingInfo summarizes the current snapshot.
type HousingInfo struct {
	Listings     int `json:"listings"`
	Beds         int `json:"beds"`
	OccupiedBeds int `json:"occupiedBeds"`
	Applications int `json:"applications"`
}

type DepStatus struct {
	Status string      `json:"status"`
	PingMs interface{} `json:"pingMs"`
}

const (
	statusConnected = "connected"
	statusDisabled  = "disabled"
	statusError     = "error"
)

// processStart backs uptime when Redis holds no start time.
var processStart = time.Now()

// CollectHealth gathers health data from Redis, the optional DB and the housing store.
// Overall status is "ok" unless a configured dependency fails its ping.
func CollectHealth(ctx context.Context, rdb *redis.Client, db DBPinger, store SnapshotSource) CollectResult {
	result := CollectResult{
		Dependencies: make(map[string]DepStatus),
	}

	dbStatus := DepStatus{Status: statusDisabled}
	if db != nil {
		start := time.Now()
		if err := db.Ping(); err == nil {
			dbStatus = DepStatus{Status: statusConnected, PingMs: time.Since(start).Milliseconds()}
		} else {
			dbStatus.Status = statusError
		}
	}
	result.Dependencies["database"] = dbStatus

	redisStatus := DepStatus{Status: statusDisabled}
	stats := TrafficInfo{AvgResponseTime: 0, SuccessRate: "100"}
	startTimeMs := processStart.UnixMilli()
	if rdb != nil {
		start := time.Now()
		if err := rdb.Ping(ctx).Err(); err == nil {
			redisStatus = DepStatus{Status: statusConnected, PingMs: time.Since(start).Milliseconds()}
			startTimeMs = readTraffic(ctx, rdb, &stats, startTimeMs)
		} else {
			redisStatus.Status = statusError
		}
	}
	result.Dependencies["redis"] = redisStatus
	result.Traffic = stats

	if store != nil {
		result.Housing = summarize(store.Snapshot())
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	uptimeSec := (time.Now().UnixMilli() - startTimeMs) / 1000
	if uptimeSec < 0 {
		uptimeSec = 0
	}
	result.Runtime = RuntimeInfo{
		UptimeSeconds: uptimeSec,
		Memory:        MemoryInfo{Alloc: int(m.Alloc / 1024 / 1024), HeapUsed: int(m.HeapInuse / 1024 / 1024)},
		Goroutines:    runtime.NumGoroutine(),
		Platform:      runtime.GOOS + " (" + runtime.GOARCH + ")",
		GoVersion:     runtime.Version(),
	}

	result.Status = "ok"
	if dbStatus.Status == statusError || redisStatus.Status == statusError {
		result.Status = "issue"
	}
	return result
}

func readTraffic(ctx context.Context, rdb *redis.Client, stats *TrafficInfo, startTimeMs int64) int64 {
	totalReq, _ := rdb.Get(ctx, middleware.KeyReqTotal).Result()
	totalErr, _ := rdb.Get(ctx, middleware.KeyReqErrors).Result()
	totalTime, _ := rdb.Get(ctx, middleware.KeyResTime).Result()
	resCount, _ := rdb.Get(ctx, middleware.KeyResCount).Result()
	startTimeStr, _ := rdb.Get(ctx, middleware.KeyStartTime).Result()
	lastReqStr, _ := rdb.Get(ctx, middleware.KeyLastReq).Result()

	if startTimeStr != "" {
		if t, err := strconv.ParseInt(startTimeStr, 10, 64); err == nil {
			startTimeMs = t
		}
	} else {
		rdb.Set(ctx, middleware.KeyStartTime, startTimeMs, 0)
	}

	stats.TotalRequests, _ = strconv.Atoi(totalReq)
	stats.FailedCount, _ = strconv.Atoi(totalErr)
	stats.SuccessCount = stats.TotalRequests - stats.FailedCount
	if stats.TotalRequests > 0 {
		stats.SuccessRate = strconv.FormatFloat(float64(stats.SuccessCount)/float64(stats.TotalRequests)*100, 'f', 1, 64)
	}
	timeSum, _ := strconv.ParseFloat(totalTime, 64)
	countSum, _ := strconv.Atoi(resCount)
	if countSum > 0 {
		stats.AvgResponseTime = strconv.FormatFloat(timeSum/float64(countSum), 'f', 2, 64)
	}
	if lastReqStr != "" {
		var lastReq map[string]interface{}
		_ = json.Unmarshal([]byte(lastReqStr), &lastReq)
		stats.LastRequest = lastReq
	}
	return startTimeMs
}

func summarize(snap domain.Snapshot) *HousingInfo {
	info := &HousingInfo{Listings: len(snap.Listings), Applications: len(snap.Applications)}
	for _, l := range snap.Listings {
		occ := domain.BuildOccupancy(l)
		info.Beds += occ.TotalBeds
		info.OccupiedBeds += occ.OccupiedBeds
	}
	return info
}
