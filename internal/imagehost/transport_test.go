package imagehost

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPTransportClassification(t *testing.T) {
	cases := []struct {
		status int
		want   ErrorKind
	}{
		{http.StatusOK, ErrorNone},
		{http.StatusCreated, ErrorNone},
		{http.StatusNotFound, ErrorNotFound},
		{http.StatusUnauthorized, ErrorOther},
		{http.StatusUnprocessableEntity, ErrorOther},
		{http.StatusInternalServerError, ErrorOther},
	}

	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte("body"))
		}))

		tr := &HTTPTransport{Client: srv.Client()}
		reply := tr.Request(context.Background(), srv.URL, nil)
		if reply.Kind != tc.want {
			t.Errorf("status %d classified as %v; want %v", tc.status, reply.Kind, tc.want)
		}
		if string(reply.Body) != "body" {
			t.Errorf("status %d: body = %q; want %q", tc.status, reply.Body, "body")
		}
		srv.Close()
	}
}

func TestHTTPTransportSendsHeadersAndBody(t *testing.T) {
	var (
		gotMethod string
		gotAuth   string
		gotAccept string
		gotBody   []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tr := &HTTPTransport{Client: srv.Client()}
	reply := tr.Put(context.Background(), srv.URL, commonHeaders("tok"), []byte(`{"k":"v"}`))
	if reply.Kind != ErrorNone {
		t.Fatalf("reply kind = %v; want ErrorNone", reply.Kind)
	}
	if gotMethod != http.MethodPut {
		t.Fatalf("method = %q; want PUT", gotMethod)
	}
	if gotAuth != "token tok" {
		t.Fatalf("Authorization = %q; want %q", gotAuth, "token tok")
	}
	if gotAccept != "application/vnd.github.v3+json" {
		t.Fatalf("Accept = %q", gotAccept)
	}
	if string(gotBody) != `{"k":"v"}` {
		t.Fatalf("body = %q", gotBody)
	}
}

func TestHTTPTransportConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing is listening anymore

	tr := &HTTPTransport{}
	reply := tr.DeleteResource(context.Background(), srv.URL, nil, []byte(`{}`))
	if reply.Kind != ErrorOther {
		t.Fatalf("reply kind = %v; want ErrorOther", reply.Kind)
	}
	if len(reply.Body) == 0 {
		t.Fatal("connection error should carry the error text as body")
	}
}
