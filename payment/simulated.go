package payment

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// SimulatedGateway approves charges with a fixed per-method rate after a
// configurable latency. It is seeded explicitly so tests are deterministic;
// it is only wired when no real gateway URL is configured.
type SimulatedGateway struct {
	Latency time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// Approval rates mirror the per-method odds of the original simulator.
var approvalRate = map[string]float64{
	"card":   0.9,
	"mobile": 0.8,
}

func NewSimulatedGateway(seed int64, latency time.Duration) *SimulatedGateway {
	return &SimulatedGateway{
		Latency: latency,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

func (g *SimulatedGateway) Authorize(ctx context.Context, charge Charge) (Result, error) {
	if g.Latency > 0 {
		select {
		case <-time.After(g.Latency):
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	}

	rate, ok := approvalRate[charge.Method]
	if !ok {
		return Result{Reason: "unsupported payment method"}, nil
	}

	g.mu.Lock()
	draw := g.rng.Float64()
	g.mu.Unlock()

	if draw >= rate {
		return Result{Reason: "payment declined"}, nil
	}

	return Result{
		Approved:  true,
		Reference: fmt.Sprintf("SIM-%s-%d", charge.OrderNumber, time.Now().UnixNano()),
	}, nil
}
