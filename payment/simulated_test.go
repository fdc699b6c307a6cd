package payment

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatedGatewayDeterministic(t *testing.T) {
	charge := Charge{OrderNumber: "ORD-1", Amount: decimal.NewFromInt(10), Method: "card"}

	run := func() []bool {
		g := NewSimulatedGateway(7, 0)
		var outcomes []bool
		for i := 0; i < 50; i++ {
			res, err := g.Authorize(context.Background(), charge)
			require.NoError(t, err)
			outcomes = append(outcomes, res.Approved)
		}
		return outcomes
	}

	assert.Equal(t, run(), run(), "same seed must replay the same outcomes")
}

func TestSimulatedGatewayApprovalCarriesReference(t *testing.T) {
	g := NewSimulatedGateway(1, 0)
	var res Result
	var err error
	for i := 0; i < 20; i++ {
		res, err = g.Authorize(context.Background(), Charge{OrderNumber: "ORD-2", Method: "card"})
		require.NoError(t, err)
		if res.Approved {
			break
		}
	}
	require.True(t, res.Approved, "a 90%% approval rate should approve within 20 draws")
	assert.NotEmpty(t, res.Reference)
	assert.Empty(t, res.Reason)
}

func TestSimulatedGatewayUnknownMethod(t *testing.T) {
	g := NewSimulatedGateway(1, 0)
	res, err := g.Authorize(context.Background(), Charge{OrderNumber: "ORD-3", Method: "barter"})
	require.NoError(t, err)
	assert.False(t, res.Approved)
	assert.Equal(t, "unsupported payment method", res.Reason)
}

func TestSimulatedGatewayHonoursContextCancellation(t *testing.T) {
	g := NewSimulatedGateway(1, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Authorize(ctx, Charge{OrderNumber: "ORD-4", Method: "card"})
	assert.ErrorIs(t, err, context.Canceled)
}
