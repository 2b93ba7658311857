// Package apiclient is the HTTP adapter for the Flow REST backend. Calls never
// return Go errors: every outcome is a Result or Response carrying either the
// decoded data or an APIError with a user facing message and optional code.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/flow-client/authmodel"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	NetworkErrorMessage  = "Unable to reach the server. Check your connection and try again."
	CodeInvalidResponse  = "INVALID_RESPONSE"
	CodeInternal         = "CLIENT_ERROR"
	maxErrorBodyBytes    = 1 << 20
	defaultContentType   = "application/json"
	invalidResponseError = "Unexpected response from the server."
)

// APIError is a backend rejection or transport failure.
type APIError struct {
	Status  int    // HTTP status, zero for transport failures
	Message string // safe to show to the user
	Code    string // machine readable code when the backend sent one
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return e.Message + " (" + e.Code + ")"
}

// IsAuth reports whether the backend rejected the credentials.
func (e *APIError) IsAuth() bool {
	return e != nil && (e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden)
}

// IsNetwork reports a transport failure.
func (e *APIError) IsNetwork() bool {
	return e != nil && e.Code == authmodel.CodeNetworkError
}

// Result is the outcome of a call whose body the caller decodes itself.
type Result struct {
	Status int
	Error  *APIError
}

func (r Result) OK() bool { return r.Error == nil }

// Response is the outcome of a typed call.
type Response[T any] struct {
	Data   T
	Status int
	Error  *APIError
}

func (r Response[T]) OK() bool { return r.Error == nil }

type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     oauth2.TokenSource
	logger     zerolog.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets a per request timeout on the underlying http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			hc := *c.httpClient
			hc.Timeout = d
			c.httpClient = &hc
		}
	}
}

// WithTokenSource sets where bearer tokens come from when a call does not
// pass one explicitly.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(c *Client) {
		c.tokens = ts
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a client for baseURL, which includes the version prefix
// (for example http://localhost:8000/api/v1).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     log.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithTokens returns a copy of the client that reads bearer tokens from ts.
func (c *Client) WithTokens(ts oauth2.TokenSource) *Client {
	cp := *c
	cp.tokens = ts
	return &cp
}

func (c *Client) BaseURL() string { return c.baseURL }

type requestOptions struct {
	token   *string
	query   url.Values
	noToken bool
}

type RequestOption func(*requestOptions)

// WithToken sends token as the bearer credential, overriding the token source.
func WithToken(token string) RequestOption {
	return func(o *requestOptions) {
		o.token = &token
	}
}

// WithoutToken sends no Authorization header.
func WithoutToken() RequestOption {
	return func(o *requestOptions) {
		o.noToken = true
	}
}

// WithQuery appends query parameters to the request URL.
func WithQuery(q url.Values) RequestOption {
	return func(o *requestOptions) {
		o.query = q
	}
}

func (c *Client) bearer(o requestOptions) string {
	switch {
	case o.noToken:
		return ""
	case o.token != nil:
		return *o.token
	case c.tokens != nil:
		tok, err := c.tokens.Token()
		if err != nil || tok == nil {
			return ""
		}
		return tok.AccessToken
	}
	return ""
}

func networkError() *APIError {
	return &APIError{Message: NetworkErrorMessage, Code: authmodel.CodeNetworkError}
}

// Do performs one request. body is JSON encoded when non nil and a 2xx body
// is decoded into out when out is non nil.
func (c *Client) Do(ctx context.Context, method, path string, body, out any, opts ...RequestOption) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().Interface("panic", r).Str("method", method).Str("path", path).Msg("api call panicked")
			res = Result{Error: &APIError{Message: "Something went wrong. Please try again.", Code: CodeInternal}}
		}
	}()

	o := requestOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	target := c.baseURL + path
	if len(o.query) > 0 {
		target += "?" + o.query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return Result{Error: &APIError{Message: "The request could not be encoded.", Code: CodeInternal}}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return Result{Error: &APIError{Message: "The request could not be created.", Code: CodeInternal}}
	}
	req.Header.Set("Accept", defaultContentType)
	if body != nil {
		req.Header.Set("Content-Type", defaultContentType)
	}
	if token := c.bearer(o); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("method", method).Str("path", path).Msg("api transport failure")
		return Result{Error: networkError()}
	}
	defer resp.Body.Close()

	c.logger.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg("api call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		apiErr := ParseError(resp.StatusCode, raw)
		return Result{Status: resp.StatusCode, Error: apiErr}
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			if ctx.Err() != nil {
				return Result{Status: resp.StatusCode, Error: networkError()}
			}
			return Result{Status: resp.StatusCode, Error: &APIError{Status: resp.StatusCode, Message: invalidResponseError, Code: CodeInvalidResponse}}
		}
	}
	return Result{Status: resp.StatusCode}
}

func call[T any](ctx context.Context, c *Client, method, path string, body any, opts ...RequestOption) Response[T] {
	var out T
	res := c.Do(ctx, method, path, body, &out, opts...)
	if res.Error != nil {
		var zero T
		return Response[T]{Data: zero, Status: res.Status, Error: res.Error}
	}
	return Response[T]{Data: out, Status: res.Status}
}

type detailObject struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

type validationItem struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

// ParseError extracts a message and code from an error body. It understands
// {"detail": {"message", "code"}}, {"detail": "..."}, {"message", "code"},
// {"error", "error_description"} and {"detail": [{"msg", "type"}]}, falling
// back to the HTTP status text.
func ParseError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err == nil {
		if detail, ok := raw["detail"]; ok {
			var obj detailObject
			var text string
			var list []validationItem
			switch {
			case json.Unmarshal(detail, &obj) == nil && obj.Message != "":
				apiErr.Message, apiErr.Code = obj.Message, obj.Code
			case json.Unmarshal(detail, &text) == nil && text != "":
				apiErr.Message = text
			case json.Unmarshal(detail, &list) == nil && len(list) > 0:
				apiErr.Message = validationMessage(list)
				apiErr.Code = authmodel.CodeValidation
			}
		}
		if apiErr.Message == "" {
			var flat struct {
				Message          string `json:"message"`
				Code             string `json:"code"`
				Error            string `json:"error"`
				ErrorDescription string `json:"error_description"`
			}
			if json.Unmarshal(body, &flat) == nil {
				switch {
				case flat.Message != "":
					apiErr.Message, apiErr.Code = flat.Message, flat.Code
				case flat.ErrorDescription != "":
					apiErr.Message, apiErr.Code = flat.ErrorDescription, flat.Error
				case flat.Error != "":
					apiErr.Message = flat.Error
				}
			}
		}
	}

	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
		if apiErr.Message == "" {
			apiErr.Message = fmt.Sprintf("Request failed with status %d", status)
		}
	}
	return apiErr
}

func validationMessage(items []validationItem) string {
	msgs := make([]string, 0, len(items))
	for _, item := range items {
		msg := item.Msg
		if n := len(item.Loc); n > 0 {
			if field, ok := item.Loc[n-1].(string); ok && field != "body" {
				msg = field + ": " + msg
			}
		}
		msgs = append(msgs, msg)
	}
	return strings.Join(msgs, "; ")
}
