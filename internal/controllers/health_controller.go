package controllers

import (
	"fmt"
	"net/http"
	"time"

	"ytstat/internal/keypool"
	"ytstat/internal/models"
	"ytstat/internal/services"
)

type HealthController struct {
	collector services.CollectorServiceInterface
	pool      keypool.KeyPoolInterface
	startTime time.Time
}

type lastCycle struct {
	ID         string    `json:"id"`
	Mode       string    `json:"mode"`
	Outcome    string    `json:"outcome"`
	FinishedAt time.Time `json:"finished_at"`
	Cause      string    `json:"cause,omitempty"`
}

type healthResponse struct {
	Status        string     `json:"status"`
	Uptime        string     `json:"uptime"`
	UptimeSeconds float64    `json:"uptime_seconds"`
	Running       bool       `json:"running"`
	Keys          int        `json:"keys"`
	KeysAvailable int        `json:"keys_available"`
	LastCycle     *lastCycle `json:"last_cycle,omitempty"`
}

// Health is degraded when no key can serve a request or the last cycle
// was fatal. It still answers 200 so probes only fail on a dead process.
func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(hc.startTime)
	resp := healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		Running:       hc.collector.Running(),
		Keys:          hc.pool.Len(),
		KeysAvailable: hc.pool.Available(),
	}
	if report := hc.collector.LastReport(); report != nil {
		resp.LastCycle = &lastCycle{
			ID:         report.CycleID,
			Mode:       report.Mode,
			Outcome:    report.Outcome,
			FinishedAt: report.FinishedAt,
			Cause:      report.Cause,
		}
		if report.Outcome == models.OutcomeFatal {
			resp.Status = "degraded"
		}
	}
	if resp.KeysAvailable == 0 {
		resp.Status = "degraded"
	}

	writeJSON(w, http.StatusOK, resp)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(collector services.CollectorServiceInterface, pool keypool.KeyPoolInterface) *HealthController {
	return &HealthController{
		collector: collector,
		pool:      pool,
		startTime: time.Now(),
	}
}
