package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fawziabuhussin/task-manager-api/internal/application/auth"
	"github.com/fawziabuhussin/task-manager-api/internal/application/mailbox"
	"github.com/fawziabuhussin/task-manager-api/internal/application/session"
	"github.com/fawziabuhussin/task-manager-api/internal/application/task"
	"github.com/fawziabuhussin/task-manager-api/internal/config"
	jwtinfra "github.com/fawziabuhussin/task-manager-api/internal/infrastructure/jwt"
	"github.com/fawziabuhussin/task-manager-api/internal/pkg/hash"
	"github.com/fawziabuhussin/task-manager-api/internal/transport/http/handler"
	appmiddleware "github.com/fawziabuhussin/task-manager-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	AccountRepo      AccountRepository
	VerificationRepo VerificationRepository
	TaskRepo         TaskRepository
	OutboxRepo       OutboxRepository
	// Mailer delivers verification codes. When nil, mail is captured in OutboxRepo.
	Mailer      Mailer
	JWTProvider *jwtinfra.Provider
	Hasher      *hash.Bcrypt
	Logger      *logrus.Logger
	// Now overrides the clock used by the services; nil means time.Now.
	Now func() time.Time
}

// NewRouter builds and returns the application router. ctx bounds the
// lifetime of background work such as rate-limiter cleanup.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps) http.Handler {
	log := deps.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	trusted, invalid := appmiddleware.ParseTrustedProxies(cfg.TrustedProxies)
	if len(invalid) > 0 {
		log.WithField("entries", invalid).Warn("ignoring invalid trusted proxies")
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(appmiddleware.RealIP(trusted))
	r.Use(chimiddleware.RequestLogger(&chimiddleware.DefaultLogFormatter{Logger: log, NoColor: true}))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", appmiddleware.CSRFHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	loginRL := appmiddleware.NewRateLimiter(ctx, appmiddleware.PerMinute(cfg.LoginRatePerMinute), max(cfg.LoginRatePerMinute, 1))
	// 5 requests/second, burst of 10 on the other unauthenticated writes.
	sensitiveRL := appmiddleware.NewRateLimiter(ctx, rate.Limit(5), 10)

	mailboxSvc := mailbox.NewService(deps.OutboxRepo, deps.Now)
	var mailer auth.Mailer = mailboxSvc
	if deps.Mailer != nil {
		mailer = deps.Mailer
	}

	authSvc := auth.NewService(auth.ServiceDeps{
		Accounts: deps.AccountRepo,
		Codes:    deps.VerificationRepo,
		Hasher:   deps.Hasher,
		Mailer:   mailer,
		Log:      log.WithField("component", "auth"),
		Now:      deps.Now,
	})
	sessionSvc := session.NewService(session.ServiceDeps{
		Accounts: deps.AccountRepo,
		Hasher:   deps.Hasher,
		Tokens:   deps.JWTProvider,
		Log:      log.WithField("component", "session"),
		Now:      deps.Now,
	})
	taskSvc := task.NewService(deps.TaskRepo, log.WithField("component", "task"), deps.Now)

	cookies := handler.CookieConfig{Secure: cfg.CookieSecure, MaxAge: deps.JWTProvider.Expiry()}
	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc, sessionSvc, cookies, log)
	taskH := handler.NewTaskHandler(taskSvc, log)
	devH := handler.NewDevHandler(mailboxSvc, log)

	r.Get("/health", healthH.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Get("/csrf", authH.CSRF)
			r.Get("/me", authH.Me)
			r.With(sensitiveRL.Limit).Post("/signup", authH.Signup)
			r.With(sensitiveRL.Limit).Post("/verify", authH.Verify)
			r.With(sensitiveRL.Limit).Post("/resend", authH.Resend)
			r.With(loginRL.Limit).Post("/login", authH.Login)
			r.With(appmiddleware.CSRF).Post("/logout", authH.Logout)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Use(appmiddleware.Auth(deps.JWTProvider))
			r.Use(appmiddleware.CSRF)

			r.Get("/", taskH.List)
			r.Post("/", taskH.Create)
			r.Get("/{id}", taskH.Get)
			r.Put("/{id}", taskH.Update)
			r.Patch("/{id}", taskH.Update)
			r.Delete("/{id}", taskH.Delete)
		})

		if cfg.DevRoutesEnabled() {
			r.Route("/dev", func(r chi.Router) {
				r.Get("/mailbox", devH.Mailbox)
				r.Get("/ip", devH.IP)
			})
		}
	})

	return r
}
