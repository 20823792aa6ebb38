package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ordersync/internal/config"
	"github.com/roach88/ordersync/internal/destination"
	"github.com/roach88/ordersync/internal/ir"
	"github.com/roach88/ordersync/internal/table"
)

func TestRecorder_Trace(t *testing.T) {
	ctx := context.Background()
	rec := NewRecorder(destination.NewMemory())

	_, err := rec.SubResources(ctx, "d")
	require.NoError(t, err)
	require.NoError(t, rec.AddSubResource(ctx, "d", "Pedidos VTEX"))
	_, err = rec.WriteRows(ctx, "d", table.Origin("Pedidos VTEX"), [][]string{{"h"}, {"v"}}, destination.Overwrite)
	require.NoError(t, err)
	_, err = rec.ReadRows(ctx, "d", table.Rows("Pedidos VTEX", 1, 2))
	require.NoError(t, err)
	require.NoError(t, rec.Clear(ctx, "d", table.Whole("Pedidos VTEX")))

	assert.Equal(t, []string{
		"sub_resources",
		"add_sub_resource 'Pedidos VTEX'",
		"write_rows 'Pedidos VTEX'!A1 rows=2 mode=overwrite",
		"read_rows 'Pedidos VTEX'!1:2",
		"clear 'Pedidos VTEX'",
	}, rec.Trace())

	rec.Reset()
	assert.Empty(t, rec.Calls())
}

func TestRecorder_RecordsErrors(t *testing.T) {
	ctx := context.Background()
	mem := destination.NewMemory()
	mem.FailOn(destination.OpSubResources, errors.New("quota exceeded"))
	rec := NewRecorder(mem)

	_, err := rec.SubResources(ctx, "d")
	require.Error(t, err)
	assert.Equal(t, []string{"sub_resources error=quota exceeded"}, rec.Trace())
	assert.Equal(t, []destination.Op{destination.OpSubResources}, rec.Ops())
}

func TestStubOrderSource(t *testing.T) {
	ctx := context.Background()
	src := NewStubOrderSource().
		SetOrders("acme", ir.IRObject{"orderId": ir.IRString("1")}).
		SetError("globex", errors.New("boom"))

	got, err := src.FetchOrders(ctx, config.Tenant{Name: "acme"})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = src.FetchOrders(ctx, config.Tenant{Name: "globex"})
	assert.EqualError(t, err, "boom")

	got, err = src.FetchOrders(ctx, config.Tenant{Name: "unknown"})
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.Equal(t, []string{"acme", "globex", "unknown"}, src.Calls())
}
