package routes

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/AnshRaj112/travel-journal-backend/internal/handlers"
	"github.com/AnshRaj112/travel-journal-backend/internal/middleware"
)

type Options struct {
	Resolver       middleware.Resolver
	Log            *zap.Logger
	AllowedOrigins []string
	Production     bool
	// UploadsDir is served under /uploads/ when set (local media backend).
	UploadsDir string
	// TrustProxy makes request logs use X-Real-IP / X-Forwarded-For.
	TrustProxy bool
}

// NewRouter builds the full HTTP stack: global middleware, then the API routes.
func NewRouter(h *handlers.Handlers, opts Options) *chi.Mux {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	r := chi.NewRouter()

	r.Use(middleware.CORS(opts.AllowedOrigins))
	r.Use(middleware.SecurityHeaders(opts.Production))
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.RequestLogger(opts.Log, opts.TrustProxy))
	r.Use(chimiddleware.Recoverer)

	SetupRoutes(r, h, opts)
	return r
}

func SetupRoutes(r chi.Router, h *handlers.Handlers, opts Options) {
	requireAuth := middleware.RequireAuth(opts.Resolver, opts.Log, false)

	r.Get("/health", h.HealthCheck)

	if opts.UploadsDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(filesOnly{http.Dir(opts.UploadsDir)})))
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", h.Signup)
			r.Post("/login", h.Login)
			r.With(requireAuth).Get("/me", h.Me)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Route("/users", func(r chi.Router) {
				r.Get("/profile", h.GetProfile)
				r.Put("/profile", h.UpdateProfile)
				r.Put("/profile-image", h.UpdateProfilePhoto)
				r.Get("/following", h.GetFollowing)
				r.Post("/follow/{id}", h.FollowUser)
				r.Post("/unfollow/{id}", h.UnfollowUser)
				r.Get("/{id}", h.GetUser)
			})

			r.Route("/journals", func(r chi.Router) {
				r.Post("/", h.CreateJournal)
				r.Get("/user", h.GetUserJournals)
				r.Get("/all", h.GetAllJournals)
				r.Get("/share/{id}", h.ShareJournal)
				r.Get("/{id}", h.GetJournal)
				r.Put("/{id}", h.UpdateJournal)
				r.Delete("/{id}", h.DeleteJournal)
				r.Post("/{id}/like", h.LikeJournal)
				r.Post("/{id}/comment", h.CommentJournal)
			})

			r.Get("/notifications", h.ListNotifications)
			r.Put("/notifications/{id}/read", h.MarkNotificationRead)
		})
	})

	r.With(middleware.RequireAuth(opts.Resolver, opts.Log, true)).Get("/ws/notifications", h.NotificationsWebSocket)
}

// filesOnly serves regular files and reports directories as missing, so
// /uploads/ never renders a listing of stored media.
type filesOnly struct {
	root http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.root.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, fs.ErrNotExist
	}
	return file, nil
}
