package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// request logger goes after RequestID so it can read the id
	r.Use(RequestLogger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/jobs", func(r chi.Router) {
		r.Post("/", h.CreateJob)
		r.Get("/", h.ListJobs)
		r.Get("/{id}", h.GetJob)
		r.Delete("/{id}", h.DeleteJob)
		r.Post("/{id}/cancel", h.CancelJob)
	})

	r.Route("/agents", func(r chi.Router) {
		r.Post("/", h.CreateAgent)
		r.Get("/", h.ListAgents)
		r.Get("/{id}", h.GetAgent)
		r.Delete("/{id}", h.DeleteAgent)
	})

	r.Route("/queue", func(r chi.Router) {
		r.Get("/status", h.QueueStatus)
		r.Post("/trigger", h.TriggerQueue)
		r.Post("/match/{jobID}", h.MatchJob)
		r.Get("/match/{jobID}", h.GetMatchDetails)
		r.Post("/execute/{jobID}", h.ExecuteJob)
		r.Post("/execute/{jobID}/agents/{agentID}", h.ExecuteJobAgent)
		r.Post("/complete/{jobID}/agents/{agentID}", h.CompleteJob)
		r.Get("/result/{jobID}", h.GetExecutionResult)
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return r
}
