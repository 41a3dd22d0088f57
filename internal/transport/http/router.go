package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"trivia-quiz/internal/app"
	"trivia-quiz/internal/export"
)

// NewRouter mounts the quiz websocket and the results endpoints.
func NewRouter(service *app.QuizService, ws *WSHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ws", ws.ServeWS)
	r.Get("/results", resultsJSON(service))
	r.Get("/results.csv", resultsCSV(service))
	return r
}

func resultsJSON(service *app.QuizService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, ok := service.Report()
		if !ok {
			http.Error(w, "no completed quiz", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(report); err != nil {
			slog.Warn("write results", "error", err)
		}
	}
}

func resultsCSV(service *app.QuizService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, ok := service.Report()
		if !ok {
			http.Error(w, "no completed quiz", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="quiz-results.csv"`)
		if err := export.WriteCSV(w, report.Answers); err != nil {
			slog.Warn("write results csv", "error", err)
		}
	}
}
