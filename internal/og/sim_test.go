package og

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/schema"
)

func TestSimOrderLifecycle(t *testing.T) {
	sim := NewSim(16)
	ctx := t.Context()

	id := sim.NextOrderID()
	o := &schema.Order{ID: id, Ticker: "TEST", Kind: schema.KindEntry, Side: schema.SideBuy, RequestedQty: 100}
	require.NoError(t, sim.SubmitOrder(ctx, o))

	ev := <-sim.Events()
	assert.Equal(t, schema.EventOrderStatus, ev.Kind)
	assert.Equal(t, schema.StatusSubmitted, ev.Status)
	assert.Equal(t, id, ev.OrderID)

	require.NoError(t, sim.Fill(id, 40, 10_0000))
	ev = <-sim.Events()
	assert.Equal(t, schema.StatusPartFilled, ev.Status)
	assert.Equal(t, schema.Quantity(40), ev.FilledQty)

	require.NoError(t, sim.Fill(id, 100, 10_0000))
	ev = <-sim.Events()
	assert.Equal(t, schema.StatusFilled, ev.Status)

	// filled orders leave the working set
	assert.Empty(t, sim.WorkingOrders("TEST"))
	assert.Error(t, sim.Fill(id, 100, 10_0000))
}

func TestSimCancel(t *testing.T) {
	sim := NewSim(16)
	ctx := t.Context()

	o := &schema.Order{ID: sim.NextOrderID(), Ticker: "TEST", Kind: schema.KindEntry, RequestedQty: 10}
	require.NoError(t, sim.SubmitOrder(ctx, o))
	<-sim.Events()

	require.NoError(t, sim.CancelOrder(ctx, o.ID))
	ev := <-sim.Events()
	assert.Equal(t, schema.StatusCancelled, ev.Status)

	err := sim.CancelOrder(ctx, o.ID)
	assert.ErrorIs(t, err, ErrUnknownOrder)
}

func TestSimRejectsDuplicateClientRef(t *testing.T) {
	sim := NewSim(16)
	ctx := t.Context()

	o := &schema.Order{ID: sim.NextOrderID(), ClientRef: "ref-1", Ticker: "TEST", RequestedQty: 10}
	require.NoError(t, sim.SubmitOrder(ctx, o))
	<-sim.Events()

	dup := &schema.Order{ID: sim.NextOrderID(), ClientRef: "ref-1", Ticker: "TEST", RequestedQty: 10}
	assert.ErrorIs(t, sim.SubmitOrder(ctx, dup), ErrDuplicateClientRef)
	assert.Len(t, sim.WorkingOrders("TEST"), 1)
}

func TestSimOffline(t *testing.T) {
	sim := NewSim(16)
	sim.SetOffline(true)

	o := &schema.Order{ID: sim.NextOrderID(), Ticker: "TEST", RequestedQty: 10}
	assert.ErrorIs(t, sim.SubmitOrder(t.Context(), o), ErrGatewayDisconnected)
	assert.ErrorIs(t, sim.CancelOrder(t.Context(), o.ID), ErrGatewayDisconnected)
}
