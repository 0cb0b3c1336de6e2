package server

import (
	"context"
	"io/fs"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/stockfolio/internal/database"
	"github.com/aristath/stockfolio/internal/di"
	"github.com/aristath/stockfolio/internal/scheduler"
	"github.com/aristath/stockfolio/internal/server/respond"
)

// JobRunner runs a job outside its schedule
type JobRunner interface {
	RunNow(job scheduler.Job) error
}

// SystemHandlersConfig holds what the system endpoints report on
type SystemHandlersConfig struct {
	DB             *database.DB
	DataDir        string
	QuoteProvider  string
	OffsiteBackups bool
	Jobs           *di.JobInstances
	Runner         JobRunner // defaults to an unstarted scheduler
	Version        string
}

// SystemHandlers serves process, database and disk status plus manual job
// triggers
type SystemHandlers struct {
	db             *database.DB
	dataDir        string
	quoteProvider  string
	offsiteBackups bool
	version        string
	started        time.Time
	jobs           map[string]scheduler.Job
	runner         JobRunner
	log            zerolog.Logger
}

// NewSystemHandlers creates the system handlers
func NewSystemHandlers(cfg SystemHandlersConfig, log zerolog.Logger) *SystemHandlers {
	h := &SystemHandlers{
		db:             cfg.DB,
		dataDir:        cfg.DataDir,
		quoteProvider:  cfg.QuoteProvider,
		offsiteBackups: cfg.OffsiteBackups,
		version:        cfg.Version,
		started:        time.Now(),
		jobs:           map[string]scheduler.Job{},
		runner:         cfg.Runner,
		log:            log.With().Str("handler", "system").Logger(),
	}
	if h.runner == nil {
		h.runner = scheduler.New(log)
	}
	if cfg.Jobs != nil {
		for _, job := range []scheduler.Job{cfg.Jobs.DailyMaintenance, cfg.Jobs.WALCheckpoint} {
			if job != nil {
				h.jobs[job.Name()] = job
			}
		}
	}
	return h
}

// RegisterRoutes registers the system routes
func (h *SystemHandlers) RegisterRoutes(r chi.Router) {
	r.Get("/status", h.HandleSystemStatus)
	r.Get("/database", h.HandleDatabaseStats)
	r.Get("/disk", h.HandleDiskUsage)
	r.Post("/jobs/{name}", h.HandleTriggerJob)
}

// SystemStatusResponse is the process-level status snapshot
type SystemStatusResponse struct {
	Status         string  `json:"status"` // "healthy" or "degraded"
	Version        string  `json:"version"`
	UptimeSeconds  int64   `json:"uptime_seconds"`
	CPUPercent     float64 `json:"cpu_percent"`
	RAMPercent     float64 `json:"ram_percent"`
	Portfolios     int     `json:"portfolios"`
	Holdings       int     `json:"holdings"`
	QuoteProvider  string  `json:"quote_provider"`
	OffsiteBackups bool    `json:"offsite_backups"`
	Error          string  `json:"error,omitempty"`
}

// DatabaseStatsResponse describes portfolio.db
type DatabaseStatsResponse struct {
	Name        string          `json:"name"`
	Path        string          `json:"path"`
	Stats       *database.Stats `json:"stats"`
	LastChecked string          `json:"last_checked"`
}

// DiskUsageResponse represents disk usage statistics
type DiskUsageResponse struct {
	DataDirMB   float64 `json:"data_dir_mb"`
	BackupsMB   float64 `json:"backups_mb"`
	AvailableMB float64 `json:"available_mb,omitempty"`
	UsedPercent float64 `json:"used_percent,omitempty"`
}

// HandleSystemStatus returns the system status snapshot
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, ramPercent := h.getSystemStats()

	response := SystemStatusResponse{
		Status:         "healthy",
		Version:        h.version,
		UptimeSeconds:  int64(time.Since(h.started).Seconds()),
		CPUPercent:     cpuPercent,
		RAMPercent:     ramPercent,
		QuoteProvider:  h.quoteProvider,
		OffsiteBackups: h.offsiteBackups,
	}

	portfolios, holdings, err := h.countRows(r.Context())
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to count portfolios")
		response.Status = "degraded"
		response.Error = err.Error()
	}
	response.Portfolios = portfolios
	response.Holdings = holdings

	respond.JSON(w, h.log, http.StatusOK, response)
}

// HandleDatabaseStats returns page and file statistics for portfolio.db
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.db.GetStats()
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusOK, DatabaseStatsResponse{
		Name:        h.db.Name(),
		Path:        h.db.Path(),
		Stats:       stats,
		LastChecked: time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleDiskUsage returns disk usage of the data and backup directories
func (h *SystemHandlers) HandleDiskUsage(w http.ResponseWriter, r *http.Request) {
	response := DiskUsageResponse{
		DataDirMB: getDirSize(h.dataDir),
		BackupsMB: getDirSize(filepath.Join(h.dataDir, "backups")),
	}

	if usage, err := disk.Usage(h.dataDir); err == nil {
		response.AvailableMB = float64(usage.Free) / 1024 / 1024
		response.UsedPercent = usage.UsedPercent
	} else {
		h.log.Warn().Err(err).Msg("Failed to read filesystem usage")
	}

	respond.JSON(w, h.log, http.StatusOK, response)
}

// HandleTriggerJob runs a registered job in the background
// POST /api/system/jobs/{name}
func (h *SystemHandlers) HandleTriggerJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	job, ok := h.jobs[name]
	if !ok {
		respond.JSON(w, h.log, http.StatusNotFound, respond.ErrorBody{
			Error: "unknown job: " + name,
			Code:  "job_not_found",
		})
		return
	}

	h.log.Info().Str("job", name).Msg("Manual job triggered")
	go func() {
		if err := h.runner.RunNow(job); err != nil {
			h.log.Error().Err(err).Str("job", name).Msg("Manual job failed")
		}
	}()

	respond.JSON(w, h.log, http.StatusAccepted, map[string]string{
		"status":  "triggered",
		"job":     name,
		"message": "Job started in the background",
	})
}

func (h *SystemHandlers) countRows(ctx context.Context) (portfolios, holdings int, err error) {
	conn := h.db.Conn()
	if err = conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM portfolios`).Scan(&portfolios); err != nil {
		return 0, 0, err
	}
	if err = conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM holdings`).Scan(&holdings); err != nil {
		return portfolios, 0, err
	}
	return portfolios, holdings, nil
}

// getSystemStats returns CPU and RAM usage percentages. The CPU sample is
// short so the endpoint stays responsive.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

// getDirSize calculates total size of a directory in MB. Missing
// directories count as empty.
func getDirSize(dirPath string) float64 {
	var size int64
	_ = filepath.WalkDir(dirPath, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			if info, err := d.Info(); err == nil {
				size += info.Size()
			}
		}
		return nil
	})
	return float64(size) / 1024 / 1024
}
