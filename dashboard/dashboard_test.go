package dashboard_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jrsteele09/venta-admin/customorders"
	"github.com/jrsteele09/venta-admin/dashboard"
	"github.com/jrsteele09/venta-admin/internal/apitest"
	"github.com/jrsteele09/venta-admin/products"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	server := apitest.NewServer(t)
	stack := server.NewLoggedInStack(t)

	summary, err := dashboard.Load(context.Background(),
		products.NewService(stack.API),
		customorders.NewService(stack.API),
	)
	require.NoError(t, err)
	require.Equal(t, apitest.SeedProducts, summary.TotalProducts)
	require.Equal(t, apitest.SeedInquiries, summary.TotalOrders)
	require.Equal(t, 2, summary.PendingOrders)
	require.Len(t, summary.RecentProducts, dashboard.RecentLimit)
	require.Equal(t, "prod-7", summary.RecentProducts[0].ID)
	require.Len(t, summary.LatestOrders, dashboard.RecentLimit)
	require.Equal(t, "inq-6", summary.LatestOrders[0].ID)
}

func TestLoad_SharesOneRefresh(t *testing.T) {
	server := apitest.NewServer(t)
	stack := server.NewLoggedInStack(t)
	server.ExpireAccessTokens()
	server.HoldUnauthorized(2)

	_, err := dashboard.Load(context.Background(),
		products.NewService(stack.API),
		customorders.NewService(stack.API),
	)
	require.NoError(t, err)
	require.EqualValues(t, 1, server.RefreshCalls())
}

type failingProducts struct{ err error }

func (f failingProducts) List(context.Context, products.Filter) ([]products.Product, error) {
	return nil, f.err
}

type fixedInquiries []customorders.Inquiry

func (f fixedInquiries) ListInquiries(context.Context) ([]customorders.Inquiry, error) {
	return f, nil
}

func TestLoad_FailureFailsWholeLoad(t *testing.T) {
	boom := errors.New("Failed to fetch products")
	_, err := dashboard.Load(context.Background(), failingProducts{err: boom}, fixedInquiries{{ID: "inq-1"}})
	require.ErrorIs(t, err, boom)
}

func TestLoad_ShortLists(t *testing.T) {
	summary, err := dashboard.Load(context.Background(),
		emptyProducts{},
		fixedInquiries{{ID: "a", Status: customorders.StatusPending}, {ID: "b", Status: customorders.StatusQuoted}},
	)
	require.NoError(t, err)
	require.Empty(t, summary.RecentProducts)
	require.Len(t, summary.LatestOrders, 2)
	require.Equal(t, 1, summary.PendingOrders)
}

type emptyProducts struct{}

func (emptyProducts) List(context.Context, products.Filter) ([]products.Product, error) {
	return nil, nil
}
