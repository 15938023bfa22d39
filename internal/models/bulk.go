package models

import "time"

// TaskStatus represents the lifecycle state of a bulk trade task.
// Completed and Failed are terminal; the backend never transitions a task
// out of a terminal state.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskProcessing TaskStatus = "processing"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
)

// Terminal reports whether the status is a terminal state.
func (s TaskStatus) Terminal() bool {
	return s == TaskCompleted || s == TaskFailed
}

// OutcomeKind is the per-target result of a bulk trade task.
type OutcomeKind string

const (
	OutcomeSuccess OutcomeKind = "success"
	OutcomeFailed  OutcomeKind = "failed"
	OutcomeSkipped OutcomeKind = "skipped"
)

// BulkTradeTask is the client-side handle for an asynchronous bulk trade.
// The task itself is owned by the backend; the client only polls it.
type BulkTradeTask struct {
	TaskID           string
	SubmittedTargets []TargetID
	Status           TaskStatus
	CreatedAt        time.Time
	CompletedAt      *time.Time
}

// TargetOutcome is the result of a bulk trade for a single target account.
type TargetOutcome struct {
	TargetID  TargetID    `json:"user_id"`
	Outcome   OutcomeKind `json:"outcome"`
	ResultRef string      `json:"trade_id,omitempty"`
	Reason    string      `json:"reason,omitempty"`
}

// TaskSnapshot is one poll result for a bulk trade task.
type TaskSnapshot struct {
	TaskID   string          `json:"task_id"`
	Status   TaskStatus      `json:"status"`
	Outcomes []TargetOutcome `json:"outcomes"`
}

// CoversTargets reports whether the snapshot's outcomes cover every
// submitted target exactly once. Only meaningful once the task is terminal,
// where the backend guarantees full coverage.
func (s *TaskSnapshot) CoversTargets(submitted []TargetID) bool {
	if len(s.Outcomes) != len(submitted) {
		return false
	}
	seen := make(map[TargetID]bool, len(s.Outcomes))
	for _, o := range s.Outcomes {
		if seen[o.TargetID] {
			return false
		}
		seen[o.TargetID] = true
	}
	for _, id := range submitted {
		if !seen[id] {
			return false
		}
	}
	return true
}

// NoPendingOnFailure reports whether a globally failed task left every
// target resolved as failed or skipped. A failed task must never leave a
// target silently pending.
func (s *TaskSnapshot) NoPendingOnFailure() bool {
	if s.Status != TaskFailed {
		return true
	}
	for _, o := range s.Outcomes {
		if o.Outcome != OutcomeFailed && o.Outcome != OutcomeSkipped {
			return false
		}
	}
	return true
}
