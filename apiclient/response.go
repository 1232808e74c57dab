package apiclient

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
)

// Response is a fully read HTTP response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// DecodeJSON unmarshals the body into v. An empty body leaves v untouched.
func (r *Response) DecodeJSON(v any) error {
	if len(r.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return errors.Wrap(err, "[Response.DecodeJSON]")
	}
	return nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
