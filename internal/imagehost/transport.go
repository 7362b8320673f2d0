package imagehost

import (
	"bytes"
	"context"
	"io"
	"net/http"
)

// ErrorKind classifies the outcome of a transport call. The host only needs
// to tell "not found" apart from every other failure.
type ErrorKind int

const (
	ErrorNone ErrorKind = iota
	ErrorNotFound
	ErrorOther
)

// Reply is the outcome of one transport call. Body is kept on failures too,
// so callers can surface the provider's error text.
type Reply struct {
	Kind ErrorKind
	Body []byte
}

// Transport issues single HTTP calls with caller-provided headers. Each call
// is attempted exactly once; retry policy is out of scope.
type Transport interface {
	Request(ctx context.Context, url string, headers http.Header) Reply
	Put(ctx context.Context, url string, headers http.Header, body []byte) Reply
	DeleteResource(ctx context.Context, url string, headers http.Header, body []byte) Reply
}

// HTTPTransport implements Transport on net/http. The zero value uses
// http.DefaultClient.
type HTTPTransport struct {
	Client *http.Client
}

// Request performs a GET.
func (t *HTTPTransport) Request(ctx context.Context, url string, headers http.Header) Reply {
	return t.do(ctx, http.MethodGet, url, headers, nil)
}

// Put performs a PUT with the given body.
func (t *HTTPTransport) Put(ctx context.Context, url string, headers http.Header, body []byte) Reply {
	return t.do(ctx, http.MethodPut, url, headers, body)
}

// DeleteResource performs a DELETE with the given body.
func (t *HTTPTransport) DeleteResource(ctx context.Context, url string, headers http.Header, body []byte) Reply {
	return t.do(ctx, http.MethodDelete, url, headers, body)
}

func (t *HTTPTransport) client() *http.Client {
	if t.Client != nil {
		return t.Client
	}
	return http.DefaultClient
}

func (t *HTTPTransport) do(ctx context.Context, method, url string, headers http.Header, body []byte) Reply {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return Reply{Kind: ErrorOther, Body: []byte(err.Error())}
	}
	for key, values := range headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := t.client().Do(req)
	if err != nil {
		return Reply{Kind: ErrorOther, Body: []byte(err.Error())}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Reply{Kind: ErrorOther, Body: []byte(err.Error())}
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return Reply{Kind: ErrorNone, Body: data}
	case resp.StatusCode == http.StatusNotFound:
		return Reply{Kind: ErrorNotFound, Body: data}
	default:
		return Reply{Kind: ErrorOther, Body: data}
	}
}
