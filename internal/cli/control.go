package cli

import (
	stdcontext "context"
	"time"

	"github.com/quantlab/quantctl/internal/api"
	"github.com/quantlab/quantctl/internal/supervisor"
)

// controlAPI adapts the supervisor to the control server's Controller
// interface.
type controlAPI struct {
	sup *supervisor.Supervisor
}

func newControlAPI(sup *supervisor.Supervisor) *controlAPI {
	return &controlAPI{sup: sup}
}

func (c *controlAPI) List(ctx stdcontext.Context) ([]api.ProcessReport, error) {
	names := c.sup.Names()
	reports := make([]api.ProcessReport, 0, len(names))
	for _, name := range names {
		report, err := c.Get(ctx, name)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func (c *controlAPI) Get(_ stdcontext.Context, name string) (api.ProcessReport, error) {
	status, err := c.sup.Status(name)
	if err != nil {
		return api.ProcessReport{}, err
	}
	report := api.ProcessReport{
		Name:      status.Name,
		Running:   status.Running,
		PID:       status.PID,
		StartedAt: status.StartedAt,
		Log:       status.LogPath,
	}
	if status.Running && !status.StartedAt.IsZero() {
		report.Uptime = time.Since(status.StartedAt).Truncate(time.Second).String()
	}
	return report, nil
}

func (c *controlAPI) Start(_ stdcontext.Context, name string) (api.ActionResult, error) {
	handle, err := c.sup.Start(name)
	if err != nil {
		return api.ActionResult{}, err
	}
	return api.ActionResult{
		Service: handle.Name,
		Action:  "start",
		Outcome: "started",
		PID:     handle.PID,
	}, nil
}

func (c *controlAPI) Stop(_ stdcontext.Context, name string) (api.ActionResult, error) {
	result, err := c.sup.Stop(name)
	if err != nil {
		return api.ActionResult{}, err
	}
	return api.ActionResult{
		Service: name,
		Action:  "stop",
		Outcome: result.Outcome.String(),
		PID:     result.PID,
	}, nil
}

func (c *controlAPI) Restart(ctx stdcontext.Context, name string) (api.ActionResult, error) {
	if _, err := c.sup.Stop(name); err != nil {
		return api.ActionResult{}, err
	}
	result, err := c.Start(ctx, name)
	if err != nil {
		return api.ActionResult{}, err
	}
	result.Action = "restart"
	return result, nil
}
