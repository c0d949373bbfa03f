// Package router sets up all HTTP routes and middleware chains. Routes
// are organized into the public bilingual site and the admin back
// office, each with its own middleware stack. Capability checks on
// admin route groups are a first fence; the authz gate re-checks every
// mutation.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"errsite/internal/auth"
	"errsite/internal/handlers"
	"errsite/internal/metrics"
	"errsite/internal/middleware"
	"errsite/internal/models"
	"errsite/internal/session"
	"errsite/web"
)

// New creates and returns the configured chi router with all middleware
// and route groups wired up.
func New(sessions *session.Resolver, loginLimiter *middleware.LoginLimiter, admin *handlers.Admin, authH *handlers.Auth, public *handlers.Public) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(metrics.Instrument)
	r.Use(middleware.LoadSession(sessions))

	// Operational endpoints. No auth, no CSRF.
	r.Get("/health", healthHandler)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Static assets.
	staticFS, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		panic(err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// Admin routes. Everything is CSRF-protected; everything past the
	// login pages requires a session.
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.CSRF)

		r.Get("/login", authH.LoginPage)
		r.With(loginLimiter.Middleware).Post("/login", authH.LoginSubmit)
		r.Post("/logout", authH.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Get("/", admin.Dashboard)
			r.Get("/dashboard", admin.Dashboard)

			// Content. Any authenticated role can reach these pages; the
			// gate decides per mutation.
			mountPosts(r, "/news", admin, models.PostTypeNews)
			mountPosts(r, "/updates", admin, models.PostTypeFieldUpdate)

			// Localities. Listing is open to all roles (the post form
			// needs the names); management is state-admin and up.
			r.Get("/localities", admin.LocalitiesList)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireCapability(auth.CanManageLocalities))
				r.Get("/localities/new", admin.LocalityNew)
				r.Post("/localities", admin.LocalityCreate)
				r.Get("/localities/{id}", admin.LocalityEdit)
				r.Post("/localities/{id}", admin.LocalityUpdate)
			})

			// User management, super admin only.
			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.RequireCapability(auth.CanManageUsers))
				r.Get("/", admin.UsersList)
				r.Get("/new", admin.UserNew)
				r.Post("/", admin.UserCreate)
				r.Get("/{id}", admin.UserDetail)
				r.Post("/{id}/role", admin.UserSetRole)
				r.Post("/{id}/activate", admin.UserActivate)
				r.Post("/{id}/deactivate", admin.UserDeactivate)
				r.Post("/{id}/localities", admin.UserGrantAssign)
				r.Post("/{id}/localities/{localityID}/remove", admin.UserGrantRemove)
			})

			// Audit log, super admin only.
			r.With(middleware.RequireCapability(auth.CanManageUsers)).Get("/audit", admin.AuditList)

			// Site settings, super admin only.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireCapability(auth.CanManageSettings))
				r.Get("/settings", admin.SettingsForm)
				r.Post("/settings", admin.SettingsUpdate)
			})
		})
	})

	// Public bilingual site. The regex pins {lang} to the supported
	// codes; everything else falls through to 404.
	r.Get("/", public.RedirectRoot)
	r.Route("/{lang:en|ar}", func(r chi.Router) {
		r.Get("/", public.Home)
		r.Get("/news", public.PostsList(models.PostTypeNews))
		r.Get("/news/{slug}", public.PostDetail(models.PostTypeNews))
		r.Get("/updates", public.PostsList(models.PostTypeFieldUpdate))
		r.Get("/updates/{slug}", public.PostDetail(models.PostTypeFieldUpdate))
		r.Get("/localities", public.Localities)
		r.Get("/localities/{slug}", public.Locality)
		r.Get("/donate", public.Donate)
		r.Get("/about", public.About)
	})

	return r
}

// mountPosts wires the admin CRUD routes for one post type.
func mountPosts(r chi.Router, path string, admin *handlers.Admin, t models.PostType) {
	r.Route(path, func(r chi.Router) {
		r.Get("/", admin.PostsList(t))
		r.Get("/new", admin.PostNew(t))
		r.Post("/", admin.PostCreate(t))
		r.Get("/{id}", admin.PostEdit(t))
		r.Post("/{id}", admin.PostUpdate(t))
		r.Post("/{id}/publish", admin.PostPublish(t))
		r.Post("/{id}/unpublish", admin.PostUnpublish(t))
	})
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
