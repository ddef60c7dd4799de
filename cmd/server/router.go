package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/studyloop/mastery-api/internal/api"
	apiMiddleware "github.com/studyloop/mastery-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware. It uses the application dependencies to create handlers.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	assessmentHandler := api.NewAssessmentHandler(app.assessmentService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// All mastery endpoints require an authenticated student.
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/skills/{topic}/assessments", assessmentHandler.SubmitAssessment)
			r.Get("/skills/{topic}/mastery", assessmentHandler.GetMastery)
			r.Get("/reviews/due", assessmentHandler.ListDueReviews)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
