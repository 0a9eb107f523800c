// This file is part of godchecker.

// godchecker is free software released under the MIT License.
// See LICENSE.md file for details.

package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/godchecker/godchecker/src/scheduler"
	"github.com/godchecker/godchecker/src/storage"
)

type healthzResponse struct {
	Status    string             `json:"status"`
	Timestamp int64              `json:"timestamp"`
	Version   string             `json:"version"`
	Database  string             `json:"database"`
	Uptime    int64              `json:"uptime"`
	LastRun   *storage.Run       `json:"lastRun,omitempty"`
	Tasks     []scheduler.Status `json:"tasks,omitempty"`
}

var startTime = time.Now()

// Pattern: /api/healthz
func (data *Data) handleAPIHealthz(rw http.ResponseWriter, req *http.Request) error {
	resp := healthzResponse{
		Status:    "healthy",
		Timestamp: time.Now().Unix(),
		Version:   data.Version,
		Database:  "connected",
		Uptime:    int64(time.Since(startTime).Seconds()),
	}

	dbErr := data.DB.Ping()
	if dbErr != nil {
		resp.Status = "degraded"
		resp.Database = "error"
	} else if run, ok, err := data.DB.LastRun(req.Context()); err == nil && ok {
		resp.LastRun = &run
	}

	if data.Sched != nil {
		resp.Tasks = data.Sched.Snapshot()
	}

	rw.Header().Set("Content-Type", "application/json")
	if dbErr != nil {
		rw.WriteHeader(http.StatusServiceUnavailable)
	}
	payload, _ := json.MarshalIndent(resp, "", "  ")
	rw.Write(payload)
	rw.Write([]byte("\n"))
	return nil
}
