package apiclient

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// RequestOptions describe everything about a call beyond its method and path.
// At most one of JSON or Form may be set.
type RequestOptions struct {
	Query  url.Values
	Header http.Header
	JSON   any
	Form   *MultipartForm
}

// MultipartForm is a multipart/form-data body. Fields keep the order they were added in
// and a name may repeat, which is how several files go up under one field name.
type MultipartForm struct {
	fields []formField
	files  []FormFile
}

type formField struct {
	name, value string
}

// FormFile is one uploaded file part.
type FormFile struct {
	Field       string
	FileName    string
	ContentType string
	Content     io.Reader
}

func NewMultipartForm() *MultipartForm {
	return &MultipartForm{}
}

func (f *MultipartForm) AddField(name, value string) *MultipartForm {
	f.fields = append(f.fields, formField{name: name, value: value})
	return f
}

// AddJSONField adds a field whose value is v encoded as JSON.
func (f *MultipartForm) AddJSONField(name string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "[MultipartForm.AddJSONField] %s", name)
	}
	f.AddField(name, string(raw))
	return nil
}

func (f *MultipartForm) AddFile(file FormFile) *MultipartForm {
	f.files = append(f.files, file)
	return f
}

// encode renders the form once so the body can be replayed on retry.
func (f *MultipartForm) encode() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, field := range f.fields {
		if err := w.WriteField(field.name, field.value); err != nil {
			return nil, "", errors.Wrapf(err, "write field %s", field.name)
		}
	}
	for _, file := range f.files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+escapeQuotes(file.Field)+`"; filename="`+escapeQuotes(file.FileName)+`"`)
		contentType := file.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", errors.Wrapf(err, "create part %s", file.FileName)
		}
		if file.Content != nil {
			if _, err := io.Copy(part, file.Content); err != nil {
				return nil, "", errors.Wrapf(err, "copy file %s", file.FileName)
			}
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", errors.Wrap(err, "close multipart writer")
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// pendingRequest is one logical request. Its body is held as bytes so a retry can rebuild
// an identical request. retried is the one-shot marker.
type pendingRequest struct {
	method      string
	url         string
	header      http.Header
	body        []byte
	contentType string
	requestID   string
	retried     bool
}

func (c *Client) newPendingRequest(method, path string, opts *RequestOptions) (*pendingRequest, error) {
	if opts == nil {
		opts = &RequestOptions{}
	}
	if opts.JSON != nil && opts.Form != nil {
		return nil, errors.New("[Client.Do] JSON and Form are mutually exclusive")
	}

	target, err := url.Parse(c.baseURL + "/" + strings.TrimLeft(path, "/"))
	if err != nil {
		return nil, errors.Wrapf(err, "[Client.Do] invalid path %q", path)
	}
	if len(opts.Query) > 0 {
		q := target.Query()
		for k, vs := range opts.Query {
			for _, v := range vs {
				if v != "" {
					q.Add(k, v)
				}
			}
		}
		target.RawQuery = q.Encode()
	}

	p := &pendingRequest{
		method:    method,
		url:       target.String(),
		header:    opts.Header.Clone(),
		requestID: c.newRequestID(),
	}
	switch {
	case opts.JSON != nil:
		p.body, err = json.Marshal(opts.JSON)
		if err != nil {
			return nil, errors.Wrap(err, "[Client.Do] encode JSON body")
		}
		p.contentType = "application/json"
	case opts.Form != nil:
		p.body, p.contentType, err = opts.Form.encode()
		if err != nil {
			return nil, errors.Wrap(err, "[Client.Do] encode form")
		}
	}
	return p, nil
}
