// Package bulk orchestrates fan-out of a single trade intent to many target
// accounts and exposes the polling primitive for tracking the resulting
// asynchronous task.
//
// The orchestrator is fire-and-track: Submit returns the backend's task
// handle immediately, and callers poll Status at a cadence of their own
// choosing until the task reaches a terminal state. No polling loop or
// timer policy lives here.
package bulk

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	terrors "tradegate/internal/errors"
	"tradegate/internal/gateway"
	"tradegate/internal/models"
	"tradegate/internal/schema"
)

var (
	submitSchema = schema.New("BulkSubmitResult", schema.Object(
		schema.F("task_id", schema.String()),
		schema.Opt("status", schema.String()),
	))

	statusSchema = schema.New("BulkTaskSnapshot", schema.Object(
		schema.F("task_id", schema.String()),
		schema.F("status", schema.Enum("pending", "processing", "completed", "failed")),
		schema.F("outcomes", schema.Array(schema.Object(
			schema.F("user_id", schema.Number()),
			schema.F("outcome", schema.Enum("success", "failed", "skipped")),
			schema.Opt("trade_id", schema.String()),
			schema.Opt("reason", schema.String()),
		))),
	))
)

type submitResult struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

// Orchestrator submits bulk trades and polls their status through the
// authenticated gateway.
type Orchestrator struct {
	gw     *gateway.Client
	logger zerolog.Logger
}

// New creates a bulk trade orchestrator.
func New(gw *gateway.Client, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{gw: gw, logger: logger}
}

// Submit fans the trade intent out to its target accounts with one backend
// call and returns the task handle without waiting for completion. An
// intent with no targets fails with ErrNoEligibleTargets before any network
// request.
func (o *Orchestrator) Submit(ctx context.Context, intent models.TradeIntent) (*models.BulkTradeTask, error) {
	if len(intent.Targets) == 0 {
		return nil, terrors.ErrNoEligibleTargets
	}

	result, err := gateway.Call[submitResult](ctx, o.gw, gateway.Descriptor{
		Method:       http.MethodPost,
		Path:         "/execution/bulk-execute",
		Body:         intent,
		RequiresAuth: true,
	}, submitSchema)
	if err != nil {
		return nil, terrors.Wrap(err, "bulk submit failed")
	}

	o.logger.Info().
		Str("task_id", result.TaskID).
		Str("symbol", intent.Symbol).
		Int("targets", len(intent.Targets)).
		Msg("Bulk trade submitted")

	return &models.BulkTradeTask{
		TaskID:           result.TaskID,
		SubmittedTargets: append([]models.TargetID(nil), intent.Targets...),
		Status:           models.TaskPending,
		CreatedAt:        time.Now(),
	}, nil
}

// Status polls the backend for the current snapshot of a bulk trade task.
// It is a pure read, safe to call repeatedly.
func (o *Orchestrator) Status(ctx context.Context, taskID string) (*models.TaskSnapshot, error) {
	snapshot, err := gateway.Call[models.TaskSnapshot](ctx, o.gw, gateway.Descriptor{
		Method:       http.MethodGet,
		Path:         fmt.Sprintf("/execution/bulk-status/%s", taskID),
		RequiresAuth: true,
	}, statusSchema)
	if err != nil {
		return nil, terrors.Wrapf(err, "poll status of task %s failed", taskID)
	}
	return &snapshot, nil
}
