package profileapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestDisplayName(t *testing.T) {
	known := uuid.New()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		if r.URL.Path == "/v1/profile/"+known.String() {
			w.Write([]byte(`{"display_name": "Link"}`))
			return
		}

		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	api := New(server.URL, "test-key")

	name, err := api.DisplayName(context.Background(), known)
	if err != nil {
		t.Fatal(err)
	}
	if name != "Link" {
		t.Errorf(`expected "Link", got %q`, name)
	}

	if _, err := api.DisplayName(context.Background(), uuid.New()); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %s", err)
	}
}

func TestDisplayNameError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	api := New(server.URL, "test-key")
	if _, err := api.DisplayName(context.Background(), uuid.New()); err == nil {
		t.Error("expected an error on HTTP 500")
	}
}
