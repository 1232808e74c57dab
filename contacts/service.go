// Package contacts manages contact-form submissions through the admin API.
package contacts

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jrsteele09/venta-admin/apiclient"
	"github.com/jrsteele09/venta-admin/internal/utils"
	"github.com/rs/zerolog"
)

const (
	msgFetchFailed  = "Failed to fetch contacts"
	msgNotFound     = "Contact not found"
	msgUpdateFailed = "Failed to update contact"
	msgDeleteFailed = "Failed to delete contact"
	msgStatsFailed  = "Failed to fetch contact statistics"
)

// envelope is how the contacts endpoints wrap their payloads.
type envelope[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

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

func (s *Service) List(ctx context.Context, filter Filter) (*ListResult, error) {
	var out ListResult
	opts := &apiclient.RequestOptions{Query: filter.query()}
	if err := apiclient.Fetch(ctx, s.api, http.MethodGet, "/contacts", opts, &out, msgFetchFailed); err != nil {
		s.log.Warn().Err(err).Msg("list contacts")
		return nil, err
	}
	if out.Data == nil {
		out.Data = []Contact{}
	}
	return &out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Contact, error) {
	var out envelope[Contact]
	if err := apiclient.Fetch(ctx, s.api, http.MethodGet, contactPath(id), nil, &out, msgNotFound); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// Update applies the change and returns the updated contact with the server's confirmation.
func (s *Service) Update(ctx context.Context, id string, update Update) (*Contact, string, error) {
	s.log.Debug().Str("contact_id", id).Str("status", utils.Value(update.Status)).Bool("notes", update.Notes != nil).Msg("update contact")
	var out envelope[Contact]
	opts := &apiclient.RequestOptions{JSON: update}
	if err := apiclient.Fetch(ctx, s.api, http.MethodPut, contactPath(id), opts, &out, msgUpdateFailed); err != nil {
		s.log.Warn().Err(err).Str("contact_id", id).Msg("update contact")
		return nil, "", err
	}
	return &out.Data, out.Message, nil
}

// Delete removes the contact and returns the server's confirmation message.
func (s *Service) Delete(ctx context.Context, id string) (string, error) {
	var out envelope[struct{}]
	if err := apiclient.Fetch(ctx, s.api, http.MethodDelete, contactPath(id), nil, &out, msgDeleteFailed); err != nil {
		s.log.Warn().Err(err).Str("contact_id", id).Msg("delete contact")
		return "", err
	}
	return out.Message, nil
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	var out envelope[Stats]
	if err := apiclient.Fetch(ctx, s.api, http.MethodGet, "/contacts/stats", nil, &out, msgStatsFailed); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (f Filter) query() url.Values {
	q := url.Values{}
	set := func(key, value string) {
		if value != "" {
			q.Set(key, value)
		}
	}
	set("status", f.Status)
	set("search", f.Search)
	set("sortBy", f.SortBy)
	set("order", f.Order)
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	return q
}

func contactPath(id string) string {
	return "/contacts/" + url.PathEscape(id)
}
