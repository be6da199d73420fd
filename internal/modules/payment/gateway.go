package payment

import (
	"context"
	"time"

	"suryawash/internal/domain"

	"github.com/google/uuid"
)

// SimulatedGateway approves every charge after an authorize and a capture step,
// each taking StepDelay. Cancelling ctx aborts the charge.
type SimulatedGateway struct {
	StepDelay time.Duration
	loggerf   func(format string, args ...interface{})
}

func NewSimulatedGateway(stepDelay time.Duration, loggerf func(format string, args ...interface{})) *SimulatedGateway {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &SimulatedGateway{StepDelay: stepDelay, loggerf: loggerf}
}

func (g *SimulatedGateway) Charge(ctx context.Context, tx *domain.Transaction) (string, error) {
	for _, step := range []string{"authorize", "capture"} {
		if err := wait(ctx, g.StepDelay); err != nil {
			return "", err
		}
		g.loggerf("level=info msg=gateway_step step=%s transaction_id=%s", step, tx.ID)
	}
	return "sim_" + uuid.NewString(), nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
