package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"deliveryboard/pkg/contracts"
	"deliveryboard/pkg/contracts/domain"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	buildID   string
	board     *BoardService
	dirs      map[domain.RecordKind]string
	clients   func() int
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// NewHealthService creates a health service. clients reports connected
// WebSocket clients and may be nil.
func NewHealthService(version, buildTime, buildID string, board *BoardService, dirs map[domain.RecordKind]string, clients func() int, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("build_time", buildTime),
		slog.String("build_id", buildID))

	return &HealthService{
		version:   version,
		buildTime: buildTime,
		buildID:   buildID,
		board:     board,
		dirs:      dirs,
		clients:   clients,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.Debug("HealthCheck: performing health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck reports ready once every report directory is reachable
// and each kind has a published board.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]interface{}),
	}

	for _, kind := range domain.Kinds {
		status.Services[string(kind)] = hs.checkBoard(kind)
	}
	status.Services["websocket"] = ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("%d clients connected", hs.clientCount()),
		Uptime:  time.Since(hs.startTime).String(),
	}

	for _, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status != "ready" {
			status.Status = "not_ready"
			break
		}
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	info := contracts.GetVersionInfo()
	result := map[string]interface{}{
		"version":      hs.version,
		"stage":        info.Stage,
		"api_version":  info.APIVersion,
		"go_version":   info.GoVersion,
		"os":           info.OS,
		"arch":         info.Architecture,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	if hs.buildID != "" {
		result["build_id"] = hs.buildID
	}
	if info.GitCommit != "unknown" {
		result["git_commit"] = info.GitCommit
	}
	return result
}

func (hs *HealthService) checkBoard(kind domain.RecordKind) ServiceHealth {
	dir := hs.dirs[kind]
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("Report directory not reachable: %s", dir),
		}
	}
	if hs.board == nil {
		return ServiceHealth{Status: "not_ready", Message: "board service not initialized"}
	}

	snap := hs.board.Snapshot(kind)
	if snap == nil {
		return ServiceHealth{Status: "not_ready", Message: "no report published yet"}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("%s refreshed %s ago", snap.Source.Name, time.Since(snap.RefreshedAt).Round(time.Second)),
	}
}

func (hs *HealthService) clientCount() int {
	if hs.clients == nil {
		return 0
	}
	return hs.clients()
}
