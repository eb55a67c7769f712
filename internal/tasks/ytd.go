// Package tasks defines the background jobs the worker processes.
package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/maplehq/backend-maple/internal/ytd"
)

const (
	// TypeYTDRefreshAll fans out one refresh task per active employee.
	TypeYTDRefreshAll = "payroll:ytd:refresh_all"
	// TypeYTDRefresh rebuilds one employee's snapshot for a tax year.
	TypeYTDRefresh = "payroll:ytd:refresh"
)

// YTDRefreshPayload identifies the snapshot one refresh task rebuilds.
type YTDRefreshPayload struct {
	EmployeeID uuid.UUID `json:"employeeId"`
	TaxYear    int       `json:"taxYear"`
}

// NewYTDRefreshTask builds a single-employee refresh task.
func NewYTDRefreshTask(employeeID uuid.UUID, taxYear int) (*asynq.Task, error) {
	payload, err := json.Marshal(YTDRefreshPayload{EmployeeID: employeeID, TaxYear: taxYear})
	if err != nil {
		return nil, fmt.Errorf("marshal refresh payload: %w", err)
	}
	return asynq.NewTask(TypeYTDRefresh, payload), nil
}

// NewYTDRefreshAllTask builds the fan-out task the scheduler enqueues.
func NewYTDRefreshAllTask() *asynq.Task {
	return asynq.NewTask(TypeYTDRefreshAll, nil)
}

// EmployeeLister enumerates employees whose snapshots need refreshing.
type EmployeeLister interface {
	ListActiveEmployees(ctx context.Context) ([]uuid.UUID, error)
}

// YTDHandler processes the YTD refresh tasks.
type YTDHandler struct {
	Employees EmployeeLister
	Refresher *ytd.Refresher
	Client    *asynq.Client
	Logger    zerolog.Logger
	Now       func() time.Time
}

func (h *YTDHandler) now() time.Time {
	if h != nil && h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// HandleRefreshAll enqueues one refresh task per active employee for the
// current tax year.
func (h *YTDHandler) HandleRefreshAll(ctx context.Context, _ *asynq.Task) error {
	if h == nil || h.Employees == nil || h.Client == nil {
		return fmt.Errorf("ytd refresh-all handler not configured")
	}
	taxYear := h.now().Year()
	employees, err := h.Employees.ListActiveEmployees(ctx)
	if err != nil {
		return fmt.Errorf("list active employees: %w", err)
	}
	enqueued := 0
	for _, employeeID := range employees {
		task, err := NewYTDRefreshTask(employeeID, taxYear)
		if err != nil {
			return err
		}
		if _, err := h.Client.EnqueueContext(ctx, task, asynq.MaxRetry(3)); err != nil {
			h.Logger.Error().Err(err).
				Str("employee_id", employeeID.String()).
				Msg("enqueue ytd refresh")
			continue
		}
		enqueued++
	}
	h.Logger.Info().
		Int("employees", len(employees)).
		Int("enqueued", enqueued).
		Int("tax_year", taxYear).
		Msg("ytd refresh fan-out")
	return nil
}

// HandleRefresh rebuilds one snapshot.
func (h *YTDHandler) HandleRefresh(ctx context.Context, t *asynq.Task) error {
	if h == nil || h.Refresher == nil {
		return fmt.Errorf("ytd refresh handler not configured")
	}
	var payload YTDRefreshPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal refresh payload: %w", err)
	}
	snap, err := h.Refresher.Refresh(ctx, payload.EmployeeID, payload.TaxYear)
	if err != nil {
		return fmt.Errorf("refresh ytd snapshot: %w", err)
	}
	h.Logger.Debug().
		Str("employee_id", payload.EmployeeID.String()).
		Int("tax_year", payload.TaxYear).
		Time("as_of", snap.AsOf).
		Msg("ytd snapshot refreshed")
	return nil
}
