// Package cms is a read-only client for the club's Strapi content API.
//
// Fetch is the generic typed accessor: one GET, status mapping to *Error,
// and a validated decode of the {"data": ..., "meta": ...} envelope. The
// domain accessors in accessors.go fix endpoint, populate and sort for each
// content type.
package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/eringen/clubsite/internal/logger"
)

// maxResponseSize caps how much of a response body is read.
const maxResponseSize = 10 * 1024 * 1024

// apiPrefix is prepended to every endpoint path.
const apiPrefix = "/api"

// Client talks to the content API. It holds no mutable state and is safe
// for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *logger.Logger
	timeout    time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets an overall request timeout, also on a client given by
// WithHTTPClient. Zero leaves the transport defaults in place.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger attaches a logger for request tracing.
func WithLogger(l *logger.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a client for the CMS at baseURL (without the /api suffix).
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// BaseURL returns the CMS origin the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// MediaURL resolves an upload URL. Relative paths such as /uploads/x.pdf are
// served by the CMS itself; absolute URLs (S3, CDN) are returned unchanged.
func (c *Client) MediaURL(ref string) string {
	return ResolveMediaURL(c.baseURL, ref)
}

// ResolveMediaURL joins a relative upload path onto base.
func ResolveMediaURL(base, ref string) string {
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil || u.IsAbs() || strings.HasPrefix(ref, "//") {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil || base == "" {
		return ref
	}
	return b.ResolveReference(u).String()
}

// Response is the decoded CMS envelope.
type Response[T any] struct {
	Data T
	Meta Meta
}

// Validator is implemented by decoded payloads that can check their own shape.
type Validator interface {
	Validate() error
}

type rawEnvelope struct {
	Data json.RawMessage `json:"data"`
	Meta Meta            `json:"meta"`
}

// Params is the wire-level query parameter bag. Only the accessors in this
// package build one; callers use the typed option structs instead.
type Params map[string]any

// Encode renders params as a query string. Scalars are stringified; maps,
// slices and structs are JSON-encoded. Keys are emitted in sorted order.
func (p Params) Encode() (string, error) {
	if len(p) == 0 {
		return "", nil
	}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := url.Values{}
	for _, k := range keys {
		s, err := encodeValue(p[k])
		if err != nil {
			return "", fmt.Errorf("encode param %q: %w", k, err)
		}
		values.Add(k, s)
	}
	return values.Encode(), nil
}

func encodeValue(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case fmt.Stringer:
		return x.String(), nil
	case bool:
		return strconv.FormatBool(x), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case Meet:
		return string(x), nil
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}

// endpoint builds the absolute URL for path and params.
func (c *Client) endpoint(path string, params Params) (string, error) {
	query, err := params.Encode()
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := c.baseURL + apiPrefix + path
	if query != "" {
		u += "?" + query
	}
	return u, nil
}

// Fetch issues one GET against path and decodes the data envelope into T.
// When T implements Validator the decoded value is validated before it is
// returned. Every failure is an *Error.
func Fetch[T any](ctx context.Context, c *Client, path string, params Params) (*Response[T], error) {
	body, err := c.get(ctx, path, params)
	if err != nil {
		return nil, err
	}

	var env rawEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, decodeError(path, fmt.Errorf("parse envelope: %w", err))
	}
	if len(env.Data) == 0 || bytes.Equal(bytes.TrimSpace(env.Data), []byte("null")) {
		return nil, decodeError(path, fmt.Errorf("response has no data field"))
	}

	var data T
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, decodeError(path, fmt.Errorf("parse data: %w", err))
	}
	if v, ok := any(data).(Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, decodeError(path, err)
		}
	}
	return &Response[T]{Data: data, Meta: env.Meta}, nil
}

func (c *Client) get(ctx context.Context, path string, params Params) ([]byte, error) {
	u, err := c.endpoint(path, params)
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Path: path, Message: err.Error(), Err: err}
	}
	if c.logger != nil {
		c.logger.Debug("cms request", "url", u)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Path: path, Message: err.Error(), Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		cerr := transportError(path, err)
		if c.logger != nil {
			c.logger.Error("cms request failed", "path", path, "kind", cerr.Kind.String(), "error", err)
		}
		return nil, cerr
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &Error{Kind: KindConnect, Path: path, Message: MsgConnect, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if c.logger != nil {
			c.logger.Error("cms responded with error status", "path", path, "status", resp.StatusCode)
		}
		return nil, statusError(path, resp.StatusCode)
	}
	return body, nil
}
