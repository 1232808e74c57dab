// Package products manages the product catalog through the admin API.
package products

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jrsteele09/venta-admin/apiclient"
	"github.com/jrsteele09/venta-admin/internal/utils"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	msgFetchFailed  = "Failed to fetch products"
	msgNotFound     = "Product not found"
	msgCreateFailed = "Failed to create product"
	msgUpdateFailed = "Failed to update product"
	msgDeleteFailed = "Failed to delete product"

	imagesField = "images"
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

// List returns the catalog, newest first, optionally narrowed by a search term.
func (s *Service) List(ctx context.Context, filter Filter) ([]Product, error) {
	opts := &apiclient.RequestOptions{}
	if filter.Search != "" {
		opts.Query = url.Values{"search": {filter.Search}}
	}
	var out []Product
	if err := apiclient.Fetch(ctx, s.api, http.MethodGet, "/products", opts, &out, msgFetchFailed); err != nil {
		s.log.Warn().Err(err).Msg("list products")
		return nil, err
	}
	return out, nil
}

// Get fetches one product by id or slug; the API accepts either.
func (s *Service) Get(ctx context.Context, idOrSlug string) (*Product, error) {
	var out Product
	if err := apiclient.Fetch(ctx, s.api, http.MethodGet, productPath(idOrSlug), nil, &out, msgNotFound); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) Create(ctx context.Context, in Input) (*Product, error) {
	form, err := buildForm(in, false)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Create]")
	}
	var out Product
	if err := apiclient.Fetch(ctx, s.api, http.MethodPost, "/products", &apiclient.RequestOptions{Form: form}, &out, msgCreateFailed); err != nil {
		s.log.Warn().Err(err).Str("title", in.Title).Msg("create product")
		return nil, err
	}
	return &out, nil
}

func (s *Service) Update(ctx context.Context, id string, in Input) (*Product, error) {
	form, err := buildForm(in, true)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Update]")
	}
	var out Product
	if err := apiclient.Fetch(ctx, s.api, http.MethodPut, productPath(id), &apiclient.RequestOptions{Form: form}, &out, msgUpdateFailed); err != nil {
		s.log.Warn().Err(err).Str("product_id", id).Msg("update product")
		return nil, err
	}
	return &out, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := apiclient.Fetch(ctx, s.api, http.MethodDelete, productPath(id), nil, nil, msgDeleteFailed); err != nil {
		s.log.Warn().Err(err).Str("product_id", id).Msg("delete product")
		return err
	}
	return nil
}

func productPath(idOrSlug string) string {
	return "/products/" + url.PathEscape(idOrSlug)
}

// buildForm lays out the multipart body the products endpoints expect. Optional JSON
// fields are only sent when non-empty; existingImages only on update.
func buildForm(in Input, update bool) (*apiclient.MultipartForm, error) {
	form := apiclient.NewMultipartForm().
		AddField("title", in.Title).
		AddField("sku", in.SKU).
		AddField("slug", in.Slug).
		AddField("description", in.Description).
		AddField("price", strconv.FormatFloat(in.Price, 'f', -1, 64)).
		AddField("stock", strconv.Itoa(in.Stock)).
		AddField("featured", utils.FormatBool(in.Featured))

	if len(in.Specifications) > 0 {
		if err := form.AddJSONField("specifications", in.Specifications); err != nil {
			return nil, err
		}
	}
	if len(in.Links) > 0 {
		if err := form.AddJSONField("links", in.Links); err != nil {
			return nil, err
		}
	}
	if update && len(in.ExistingImages) > 0 {
		if err := form.AddJSONField("existingImages", in.ExistingImages); err != nil {
			return nil, err
		}
	}
	for _, img := range in.Images {
		img.Field = imagesField
		form.AddFile(img)
	}
	return form, nil
}
