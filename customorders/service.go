// Package customorders manages custom-order listings and the customer inquiries about them.
package customorders

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jrsteele09/venta-admin/apiclient"
	"github.com/jrsteele09/venta-admin/internal/utils"
	"github.com/rs/zerolog"
)

const (
	msgFetchProductsFailed  = "Failed to fetch custom products"
	msgProductNotFound      = "Custom product not found"
	msgCreateProductFailed  = "Failed to create custom product"
	msgUpdateProductFailed  = "Failed to update custom product"
	msgDeleteProductFailed  = "Failed to delete custom product"
	msgFetchInquiriesFailed = "Failed to fetch inquiries"
	msgInquiryNotFound      = "Inquiry not found"
	msgCreateInquiryFailed  = "Failed to create inquiry"
	msgUpdateInquiryFailed  = "Failed to update inquiry"
	msgDeleteInquiryFailed  = "Failed to delete inquiry"
	msgProductInquiries     = "Failed to fetch product inquiries"
)

type Service struct {
	api apiclient.Doer
	log zerolog.Logger
}

type ServiceOption func(*Service)

func WithLogger(log zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.log = log
	}
}

func NewService(api apiclient.Doer, options ...ServiceOption) *Service {
	s := &Service{api: api, log: zerolog.Nop()}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *Service) ListProducts(ctx context.Context) ([]CustomProduct, error) {
	var out []CustomProduct
	if err := apiclient.Fetch(ctx, s.api, http.MethodGet, "/custom-products", nil, &out, msgFetchProductsFailed); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) GetProduct(ctx context.Context, id string) (*CustomProduct, error) {
	var out CustomProduct
	if err := apiclient.Fetch(ctx, s.api, http.MethodGet, customProductPath(id), nil, &out, msgProductNotFound); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) CreateProduct(ctx context.Context, in CustomProductInput) (*CustomProduct, error) {
	var out CustomProduct
	opts := &apiclient.RequestOptions{JSON: in}
	if err := apiclient.Fetch(ctx, s.api, http.MethodPost, "/custom-products", opts, &out, msgCreateProductFailed); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, in CustomProductInput) (*CustomProduct, error) {
	var out CustomProduct
	opts := &apiclient.RequestOptions{JSON: in}
	if err := apiclient.Fetch(ctx, s.api, http.MethodPut, customProductPath(id), opts, &out, msgUpdateProductFailed); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	return apiclient.Fetch(ctx, s.api, http.MethodDelete, customProductPath(id), nil, nil, msgDeleteProductFailed)
}

// Categories lists the distinct categories in use. It never fails: any error yields an
// empty list.
func (s *Service) Categories(ctx context.Context) []string {
	list, err := s.ListProducts(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("categories unavailable")
		return []string{}
	}
	categories := make([]string, 0, len(list))
	for _, p := range list {
		categories = append(categories, p.Category)
	}
	return utils.UniqueStrings(categories)
}

func (s *Service) ListInquiries(ctx context.Context) ([]Inquiry, error) {
	var out []Inquiry
	if err := apiclient.Fetch(ctx, s.api, http.MethodGet, "/inquiries", nil, &out, msgFetchInquiriesFailed); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) GetInquiry(ctx context.Context, id string) (*Inquiry, error) {
	var out Inquiry
	if err := apiclient.Fetch(ctx, s.api, http.MethodGet, inquiryPath(id), nil, &out, msgInquiryNotFound); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateInquiry submits an inquiry. The endpoint is public, so this works without a session.
func (s *Service) CreateInquiry(ctx context.Context, in InquiryInput) (*Inquiry, error) {
	var out Inquiry
	opts := &apiclient.RequestOptions{JSON: in}
	if err := apiclient.Fetch(ctx, s.api, http.MethodPost, "/inquiries", opts, &out, msgCreateInquiryFailed); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) UpdateInquiry(ctx context.Context, id string, update InquiryUpdate) (*Inquiry, error) {
	s.log.Debug().Str("inquiry_id", id).Str("status", utils.Value(update.Status)).Bool("notes", update.Notes != nil).Msg("update inquiry")
	var out Inquiry
	opts := &apiclient.RequestOptions{JSON: update}
	if err := apiclient.Fetch(ctx, s.api, http.MethodPut, inquiryPath(id), opts, &out, msgUpdateInquiryFailed); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) DeleteInquiry(ctx context.Context, id string) error {
	return apiclient.Fetch(ctx, s.api, http.MethodDelete, inquiryPath(id), nil, nil, msgDeleteInquiryFailed)
}

// ProductInquiries returns the inquiries filed against one custom product.
func (s *Service) ProductInquiries(ctx context.Context, productID string) ([]Inquiry, error) {
	all, err := s.ListInquiries(ctx)
	if err != nil {
		return nil, apiclient.Failure(err, msgProductInquiries)
	}
	out := make([]Inquiry, 0)
	for _, inq := range all {
		if inq.ProductID == productID {
			out = append(out, inq)
		}
	}
	return out, nil
}

// Stats counts inquiries by status. Like Categories it fails soft, to all zeros.
func (s *Service) Stats(ctx context.Context) Stats {
	all, err := s.ListInquiries(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("inquiry stats unavailable")
		return Stats{}
	}
	return CountByStatus(all)
}

// CountByStatus tallies inquiries the way Stats reports them.
func CountByStatus(inquiries []Inquiry) Stats {
	stats := Stats{Total: len(inquiries)}
	for _, inq := range inquiries {
		switch inq.Status {
		case StatusPending:
			stats.Pending++
		case StatusReviewing:
			stats.Reviewing++
		case StatusQuoted:
			stats.Quoted++
		case StatusCompleted:
			stats.Completed++
		}
	}
	return stats
}

func customProductPath(id string) string {
	return "/custom-products/" + url.PathEscape(id)
}

func inquiryPath(id string) string {
	return "/inquiries/" + url.PathEscape(id)
}
