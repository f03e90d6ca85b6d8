package module_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rmoura-dev/provisor/pkg/module"
)

func echoPathHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /items", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(r.URL.Path))
	})
	return mux
}

func TestNewValidatesPrefix(t *testing.T) {
	tests := []struct {
		name      string
		prefix    string
		wantPanic bool
	}{
		{name: "valid prefix", prefix: "/api", wantPanic: false},
		{name: "empty prefix", prefix: "", wantPanic: true},
		{name: "unanchored prefix", prefix: "api", wantPanic: true},
		{name: "multi-level prefix", prefix: "/api/v1", wantPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				recovered := recover()
				if tt.wantPanic && recovered == nil {
					t.Errorf("New(%q) did not panic", tt.prefix)
				}
				if !tt.wantPanic && recovered != nil {
					t.Errorf("New(%q) panicked: %v", tt.prefix, recovered)
				}
			}()
			module.New(tt.prefix, http.NewServeMux())
		})
	}
}

func TestModuleStripsPrefix(t *testing.T) {
	m := module.New("/api", echoPathHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	rec := httptest.NewRecorder()
	m.Serve(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Body.String(); got != "/items" {
		t.Errorf("inner path = %q, want /items", got)
	}
}

func TestModuleMiddlewareApplied(t *testing.T) {
	m := module.New("/api", echoPathHandler())

	var order []string
	m.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "first")
			next.ServeHTTP(w, r)
		})
	})
	m.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "second")
			next.ServeHTTP(w, r)
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	rec := httptest.NewRecorder()
	m.Serve(rec, req)

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("middleware order = %v, want [first second]", order)
	}
}

func TestRouterDispatchesToModule(t *testing.T) {
	router := module.NewRouter()
	router.Mount(module.New("/api", echoPathHandler()))

	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestRouterNativeFallback(t *testing.T) {
	router := module.NewRouter()
	router.Mount(module.New("/api", echoPathHandler()))
	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestRouterUnknownPrefix(t *testing.T) {
	router := module.NewRouter()
	router.Mount(module.New("/api", echoPathHandler()))

	req := httptest.NewRequest(http.MethodGet, "/other/items", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestRouterTrailingSlashNormalized(t *testing.T) {
	router := module.NewRouter()
	router.Mount(module.New("/api", echoPathHandler()))

	req := httptest.NewRequest(http.MethodGet, "/api/items/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}
