// Package dashboard assembles the landing-page overview from the catalog and inquiry lists.
package dashboard

import (
	"context"

	"github.com/jrsteele09/venta-admin/customorders"
	"github.com/jrsteele09/venta-admin/products"
	"golang.org/x/sync/errgroup"
)

// RecentLimit caps the recent products and latest orders lists.
const RecentLimit = 5

type ProductLister interface {
	List(ctx context.Context, filter products.Filter) ([]products.Product, error)
}

type InquiryLister interface {
	ListInquiries(ctx context.Context) ([]customorders.Inquiry, error)
}

type Summary struct {
	TotalProducts  int
	TotalOrders    int
	PendingOrders  int
	RecentProducts []products.Product
	LatestOrders   []customorders.Inquiry
}

// Load fetches products and inquiries concurrently. Either failing fails the whole load;
// the lists keep the order the API returned them in (newest first).
func Load(ctx context.Context, productSvc ProductLister, orderSvc InquiryLister) (*Summary, error) {
	var (
		productList []products.Product
		inquiries   []customorders.Inquiry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		productList, err = productSvc.List(gctx, products.Filter{})
		return err
	})
	g.Go(func() error {
		var err error
		inquiries, err = orderSvc.ListInquiries(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Summary{
		TotalProducts:  len(productList),
		TotalOrders:    len(inquiries),
		PendingOrders:  customorders.CountByStatus(inquiries).Pending,
		RecentProducts: head(productList, RecentLimit),
		LatestOrders:   head(inquiries, RecentLimit),
	}, nil
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
