// Package router sets up the HTTP routes and middleware chains for
// TechBlog: the server-rendered site, which runs on cookie sessions with
// CSRF protection, and the JSON API under /api, which adds CORS and bearer
// tokens.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"techblog/internal/handlers"
	"techblog/internal/identity"
	"techblog/internal/middleware"
	"techblog/internal/session"
	"techblog/web"
)

// Options tunes the middleware chains.
type Options struct {
	Secure      bool     // TLS in front: Secure cookies, HSTS
	MaxBody     int64    // request body cap in bytes; 0 disables it
	CORSOrigins []string // allowed origins for /api

	// AuthLimiter throttles sign-in, sign-up and token requests. Nil
	// disables throttling.
	AuthLimiter *middleware.RateLimiter
}

// Handlers are the handler groups the routes dispatch to.
type Handlers struct {
	Auth   *handlers.Auth
	Public *handlers.Public
	Drafts *handlers.Drafts
	API    *handlers.API
}

// New creates the configured chi router.
func New(opts Options, sessions *session.Store, tokens *identity.Tokens, h Handlers) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders(opts.Secure))
	r.Use(middleware.LimitBody(opts.MaxBody))

	// Health check: no session, no CSRF.
	r.Get("/health", healthHandler)

	static, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		panic("router: embedded static assets missing: " + err.Error())
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	throttle := func(next http.Handler) http.Handler { return next }
	if opts.AuthLimiter != nil {
		throttle = opts.AuthLimiter.Middleware
	}

	// Site: cookie sessions and CSRF.
	r.Group(func(r chi.Router) {
		r.Use(middleware.LoadSession(sessions))
		r.Use(middleware.NewCSRF(opts.Secure))

		r.Get("/", h.Public.Home)
		r.Get("/post/{id}", h.Public.Post)

		r.Get("/auth", h.Auth.Page)
		r.With(throttle).Post("/auth/signin", h.Auth.SignIn)
		r.With(throttle).Post("/auth/signup", h.Auth.SignUp)
		r.Post("/auth/signout", h.Auth.SignOut)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Get("/profile", h.Public.Profile)
			r.Get("/post/{id}/delete", h.Public.DeletePage)
			r.Post("/post/{id}/delete", h.Public.Delete)

			r.Get("/create", h.Drafts.Create)
			r.Get("/edit/{id}", h.Drafts.Edit)

			r.Route("/drafts/{id}", func(r chi.Router) {
				r.Get("/", h.Drafts.Show)
				r.Post("/", h.Drafts.Submit)
				r.Post("/form", h.Drafts.SaveForm)
				r.Post("/media", h.Drafts.AddMedia)
				r.Post("/media/{mid}/remove", h.Drafts.RemoveMedia)
				r.Post("/media/{mid}/size", h.Drafts.SetSize)
				r.Post("/upload", h.Drafts.Upload)
				r.Post("/shape", h.Drafts.Shape)
				r.Post("/resize", h.Drafts.Resize)
				r.Post("/undo", h.Drafts.Undo)
				r.Post("/redo", h.Drafts.Redo)
			})
		})
	})

	// JSON API: bearer tokens or the session cookie. Nothing here changes
	// state except the token exchange, so there is no CSRF check.
	r.Route("/api", func(r chi.Router) {
		r.Use(apiCORS(opts.CORSOrigins).Handler)
		r.Use(middleware.LoadSession(sessions))
		r.Use(middleware.LoadBearer(tokens))

		r.With(throttle).Post("/auth/token", h.API.Token)
		r.Get("/posts", h.Public.Home)
		r.Get("/posts/{id}", h.Public.Post)
		r.Get("/categories", h.API.Categories)

		r.With(middleware.RequireAuth).Get("/me", h.API.Me)
	})

	r.NotFound(notFoundHandler)

	return r
}

// apiCORS allows the configured origins to call the API with a bearer
// token. Credentials (cookies) are only allowed for explicit origins.
func apiCORS(origins []string) *cors.Cors {
	wildcard := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			wildcard = true
		}
	}
	if wildcard {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: !wildcard,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		MaxAge:           300,
	})
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	if middleware.WantsJSON(r) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Not found"}`))
		return
	}
	http.NotFound(w, r)
}
