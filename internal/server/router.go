package server

import (
	"log"
	"net/http"
	"time"

	"github.com/ecastro/clientdesk/internal/handlers"
	"github.com/ecastro/clientdesk/internal/httpx"
	"github.com/ecastro/clientdesk/internal/session"

	"gorm.io/gorm"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB, sessions *session.Codec) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	uh := handlers.NewUserHandler(db, sessions)
	mux.HandleFunc("GET /user", uh.Get)
	mux.HandleFunc("POST /user", uh.Create)
	mux.HandleFunc("GET /auth", uh.Auth)
	mux.HandleFunc("POST /logout", uh.Logout)

	protected := func(h http.HandlerFunc) http.Handler {
		return session.RequireAuth(h)
	}

	ch := handlers.NewClientHandler(db)
	mux.Handle("GET /clients", protected(ch.List))
	mux.Handle("POST /client", protected(ch.Create))
	mux.Handle("PUT /client/{id}", protected(ch.Update))
	mux.Handle("DELETE /client/{id}", protected(ch.Delete))

	dh := handlers.NewDependentHandler(db)
	mux.Handle("GET /dependents", protected(dh.List))
	mux.Handle("POST /dependent", protected(dh.Create))
	mux.Handle("PUT /dependent/{id}", protected(dh.Update))
	mux.Handle("DELETE /dependent/{id}", protected(dh.Delete))

	rh := handlers.NewReminderHandler(db)
	mux.Handle("GET /reminders", protected(rh.List))
	mux.Handle("POST /reminder", protected(rh.Create))
	mux.Handle("PUT /reminder/{id}", protected(rh.Update))
	mux.Handle("DELETE /reminder/{id}", protected(rh.Delete))

	return withCORS(withRecover(withLogging(sessions.Middleware(mux))))
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
