package routes_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rmoura-dev/provisor/pkg/routes"
)

func TestRegisterHandlers(t *testing.T) {
	mux := http.NewServeMux()

	routes.Register(mux, routes.Group{
		Prefix: "/items",
		Routes: []routes.Route{
			{
				Method:  http.MethodGet,
				Pattern: "",
				Handler: func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusOK)
				},
			},
			{
				Method:  http.MethodPost,
				Pattern: "",
				Handler: func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusCreated)
				},
			},
			{
				Method:  http.MethodGet,
				Pattern: "/{id}",
				Handler: func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusOK)
				},
			},
		},
	})

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{name: "list", method: http.MethodGet, path: "/items", want: http.StatusOK},
		{name: "create", method: http.MethodPost, path: "/items", want: http.StatusCreated},
		{name: "find", method: http.MethodGet, path: "/items/abc", want: http.StatusOK},
		{name: "method not allowed", method: http.MethodDelete, path: "/items", want: http.StatusMethodNotAllowed},
		{name: "unknown path", method: http.MethodGet, path: "/missing", want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("%s %s = %d, want %d", tt.method, tt.path, rec.Code, tt.want)
			}
		})
	}
}

func TestNestedGroups(t *testing.T) {
	mux := http.NewServeMux()

	routes.Register(mux, routes.Group{
		Prefix: "/api",
		Children: []routes.Group{
			{
				Prefix: "/jobs",
				Routes: []routes.Route{
					{
						Method:  http.MethodGet,
						Pattern: "/{id}",
						Handler: func(w http.ResponseWriter, r *http.Request) {
							w.WriteHeader(http.StatusOK)
						},
					},
				},
			},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/123", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("GET /api/jobs/123 = %d, want %d", rec.Code, http.StatusOK)
	}
}
