package api

import (
	stdcontext "context"
	"time"
)

// ProcessReport describes the runtime state of a single managed service.
type ProcessReport struct {
	Name      string    `json:"name"`
	Running   bool      `json:"running"`
	PID       int       `json:"pid,omitempty"`
	StartedAt time.Time `json:"started_at,omitzero"`
	Uptime    string    `json:"uptime,omitempty"`
	Log       string    `json:"log,omitempty"`
}

// ActionResult captures the outcome of a lifecycle operation.
type ActionResult struct {
	Service string `json:"service"`
	Action  string `json:"action"`
	Outcome string `json:"outcome"`
	PID     int    `json:"pid,omitempty"`
}

// Controller exposes the supervisor operations required by the control
// server.
type Controller interface {
	List(stdcontext.Context) ([]ProcessReport, error)
	Get(stdcontext.Context, string) (ProcessReport, error)
	Start(stdcontext.Context, string) (ActionResult, error)
	Stop(stdcontext.Context, string) (ActionResult, error)
	Restart(stdcontext.Context, string) (ActionResult, error)
}
