package models

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func targetRange(n int) []TargetID {
	ids := make([]TargetID, n)
	for i := range ids {
		ids[i] = TargetID(i + 1)
	}
	return ids
}

func shuffledOutcomes(targets []TargetID, kinds []OutcomeKind, seed int64) []TargetOutcome {
	rng := rand.New(rand.NewSource(seed))
	outcomes := make([]TargetOutcome, len(targets))
	for i, id := range targets {
		kind := kinds[i%len(kinds)]
		o := TargetOutcome{TargetID: id, Outcome: kind}
		switch kind {
		case OutcomeSuccess:
			o.ResultRef = fmt.Sprintf("tr-%d", id)
		case OutcomeFailed:
			o.Reason = "order rejected"
		case OutcomeSkipped:
			o.Reason = "account inactive"
		}
		outcomes[i] = o
	}
	rng.Shuffle(len(outcomes), func(i, j int) {
		outcomes[i], outcomes[j] = outcomes[j], outcomes[i]
	})
	return outcomes
}

// Feature: tradegate, Property 1: Terminal snapshot covers every submitted target
//
// Property: For any set of submitted targets, a terminal snapshot holding
// exactly one outcome per target, in any order and with any mix of outcome
// kinds, covers the targets. Removing or duplicating an outcome breaks
// coverage.
func TestProperty_TerminalSnapshotCoversSubmittedTargets(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	allKinds := []OutcomeKind{OutcomeSuccess, OutcomeFailed, OutcomeSkipped}

	properties.Property("One outcome per target in any order covers the targets", prop.ForAll(
		func(n int, seed int64) bool {
			targets := targetRange(n)
			snapshot := TaskSnapshot{
				TaskID:   "t1",
				Status:   TaskCompleted,
				Outcomes: shuffledOutcomes(targets, allKinds, seed),
			}
			return snapshot.CoversTargets(targets)
		},
		gen.IntRange(1, 50),
		gen.Int64(),
	))

	properties.Property("A missing outcome breaks coverage", prop.ForAll(
		func(n int, seed int64) bool {
			targets := targetRange(n)
			outcomes := shuffledOutcomes(targets, allKinds, seed)
			snapshot := TaskSnapshot{
				TaskID:   "t1",
				Status:   TaskCompleted,
				Outcomes: outcomes[:len(outcomes)-1],
			}
			return !snapshot.CoversTargets(targets)
		},
		gen.IntRange(1, 50),
		gen.Int64(),
	))

	properties.Property("A duplicated outcome breaks coverage", prop.ForAll(
		func(n int, seed int64) bool {
			targets := targetRange(n)
			outcomes := shuffledOutcomes(targets, allKinds, seed)
			outcomes[len(outcomes)-1] = outcomes[0]
			snapshot := TaskSnapshot{
				TaskID:   "t1",
				Status:   TaskCompleted,
				Outcomes: outcomes,
			}
			return !snapshot.CoversTargets(targets)
		},
		gen.IntRange(2, 50),
		gen.Int64(),
	))

	properties.Property("An outcome for an unsubmitted target breaks coverage", prop.ForAll(
		func(n int, seed int64) bool {
			targets := targetRange(n)
			outcomes := shuffledOutcomes(targets, allKinds, seed)
			outcomes[0].TargetID = TargetID(n + 100)
			snapshot := TaskSnapshot{
				TaskID:   "t1",
				Status:   TaskCompleted,
				Outcomes: outcomes,
			}
			return !snapshot.CoversTargets(targets)
		},
		gen.IntRange(1, 50),
		gen.Int64(),
	))

	properties.TestingRun(t)
}

// Feature: tradegate, Property 2: A failed task resolves every target
//
// Property: A task that fails as a whole marks every target failed or
// skipped. Any success outcome, or an outcome kind outside the failed and
// skipped set, means the check rejects the snapshot. Non-failed snapshots
// pass trivially whatever their outcomes contain.
func TestProperty_FailedTaskLeavesNoTargetPending(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	resolvedKinds := []OutcomeKind{OutcomeFailed, OutcomeSkipped}

	properties.Property("All-failed-or-skipped outcomes satisfy the check", prop.ForAll(
		func(n int, seed int64) bool {
			snapshot := TaskSnapshot{
				TaskID:   "t1",
				Status:   TaskFailed,
				Outcomes: shuffledOutcomes(targetRange(n), resolvedKinds, seed),
			}
			return snapshot.NoPendingOnFailure()
		},
		gen.IntRange(1, 50),
		gen.Int64(),
	))

	properties.Property("A success outcome on a failed task fails the check", prop.ForAll(
		func(n int, seed int64) bool {
			outcomes := shuffledOutcomes(targetRange(n), resolvedKinds, seed)
			outcomes[0].Outcome = OutcomeSuccess
			snapshot := TaskSnapshot{
				TaskID:   "t1",
				Status:   TaskFailed,
				Outcomes: outcomes,
			}
			return !snapshot.NoPendingOnFailure()
		},
		gen.IntRange(1, 50),
		gen.Int64(),
	))

	properties.Property("Non-failed snapshots pass regardless of outcomes", prop.ForAll(
		func(n int, seed int64, statusIdx int) bool {
			statuses := []TaskStatus{TaskPending, TaskProcessing, TaskCompleted}
			snapshot := TaskSnapshot{
				TaskID:   "t1",
				Status:   statuses[statusIdx],
				Outcomes: shuffledOutcomes(targetRange(n), []OutcomeKind{OutcomeSuccess, OutcomeFailed, OutcomeSkipped}, seed),
			}
			return snapshot.NoPendingOnFailure()
		},
		gen.IntRange(1, 50),
		gen.Int64(),
		gen.IntRange(0, 2),
	))

	properties.TestingRun(t)
}

func TestTaskStatusTerminal(t *testing.T) {
	tests := []struct {
		status TaskStatus
		want   bool
	}{
		{TaskPending, false},
		{TaskProcessing, false},
		{TaskCompleted, true},
		{TaskFailed, true},
	}
	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.want {
			t.Errorf("Terminal(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}
}
