package api

import (
	"net/http"

	"github.com/rmoura-dev/provisor/internal/jobs"
	"github.com/rmoura-dev/provisor/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain, runtime *Runtime) {
	routes.Register(
		mux,
		domain.Conversations.Handler().Routes(),
		domain.Chat.Handler().Routes(),
		jobs.NewHandler(domain.Jobs, runtime.Logger, runtime.Pagination).Routes(),
		domain.Audit.Handler().Routes(),
	)
}
