// Package status turns rollout recency and tail evidence into the tri-state
// activity classification. Records without a live holder never get here;
// discovery drops them before classification.
package status

import (
	"fmt"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/aelaguiz/codex-ps/internal/domain"
	"github.com/aelaguiz/codex-ps/internal/rollout"
)

const (
	// DefaultWorkingMaxAge and DefaultWaitingMinAge bound the Unknown buffer
	// zone. Both are policy defaults, overridable through configuration.
	DefaultWorkingMaxAge = 15 * time.Second
	DefaultWaitingMinAge = 60 * time.Second

	// futureSkewAllowance tolerates rollout mtimes slightly ahead of the
	// local clock (NFS, clock drift) before declaring the evidence unusable.
	futureSkewAllowance = 2 * time.Second
)

// Result is one classification: the status, a human-readable reason
// (diagnostic mode only), and the age of the newest write when known.
type Result struct {
	Status domain.Status
	Reason string
	AgeS   *int64
}

// Classifier applies the recency thresholds against an injected clock.
type Classifier struct {
	clk           clock.Clock
	workingMaxAge time.Duration
	waitingMinAge time.Duration
}

func New(clk clock.Clock, workingMaxAge, waitingMinAge time.Duration) *Classifier {
	if clk == nil {
		clk = clock.New()
	}
	if workingMaxAge <= 0 {
		workingMaxAge = DefaultWorkingMaxAge
	}
	if waitingMinAge <= 0 {
		waitingMinAge = DefaultWaitingMinAge
	}
	return &Classifier{clk: clk, workingMaxAge: workingMaxAge, waitingMinAge: waitingMinAge}
}

// Classify derives the status for one session from the rollout's last
// modification time and an optional pending tool call found near its tail.
func (c *Classifier) Classify(mtime *time.Time, pending *rollout.PendingCall) Result {
	age := c.ageSeconds(mtime)

	if pending != nil {
		if pending.Name == rollout.RequestUserInputCall {
			return Result{
				Status: domain.StatusWaiting,
				Reason: fmt.Sprintf("waiting for user input (call_id=%s)", pending.CallID),
				AgeS:   age,
			}
		}
		return Result{
			Status: domain.StatusWorking,
			Reason: fmt.Sprintf("pending tool call: %s (call_id=%s)", pending.Name, pending.CallID),
			AgeS:   age,
		}
	}

	if mtime == nil {
		return Result{Status: domain.StatusUnknown, Reason: "no rollout mtime"}
	}

	delta := c.clk.Now().Sub(*mtime)
	if delta < 0 {
		if -delta <= futureSkewAllowance {
			delta = 0
		} else {
			return Result{Status: domain.StatusUnknown, Reason: "rollout mtime is in the future"}
		}
	}

	secs := int64(delta / time.Second)
	switch {
	case delta <= c.workingMaxAge:
		return Result{
			Status: domain.StatusWorking,
			Reason: fmt.Sprintf("recent rollout write: %ds", secs),
			AgeS:   age,
		}
	case delta <= c.waitingMinAge:
		return Result{
			Status: domain.StatusUnknown,
			Reason: fmt.Sprintf("uncertain (no rollout writes for %ds)", secs),
			AgeS:   age,
		}
	default:
		return Result{
			Status: domain.StatusWaiting,
			Reason: fmt.Sprintf("idle (no rollout writes for %ds)", secs),
			AgeS:   age,
		}
	}
}

// ageSeconds clamps the mtime-derived age to zero within the skew allowance
// and reports nil when the mtime is missing or too far ahead to trust.
func (c *Classifier) ageSeconds(mtime *time.Time) *int64 {
	if mtime == nil {
		return nil
	}
	delta := c.clk.Now().Sub(*mtime)
	if delta < 0 {
		if -delta > futureSkewAllowance {
			return nil
		}
		delta = 0
	}
	secs := int64(delta / time.Second)
	return &secs
}
