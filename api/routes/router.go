package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sueworkspace/sungji-drop/api/controllers"
	"github.com/sueworkspace/sungji-drop/api/middleware"
	"github.com/sueworkspace/sungji-drop/internal/auth"
	"github.com/sueworkspace/sungji-drop/internal/catalog"
	"github.com/sueworkspace/sungji-drop/internal/chat"
	"github.com/sueworkspace/sungji-drop/internal/dealers"
	"github.com/sueworkspace/sungji-drop/internal/notifications"
	"github.com/sueworkspace/sungji-drop/internal/quotes"
	"github.com/sueworkspace/sungji-drop/internal/realtime"
	"github.com/sueworkspace/sungji-drop/internal/stats"
	"github.com/sueworkspace/sungji-drop/internal/users"
	"github.com/sueworkspace/sungji-drop/pkg/auth/session"
	"github.com/sueworkspace/sungji-drop/pkg/config"
	"github.com/sueworkspace/sungji-drop/pkg/db"
	"github.com/sueworkspace/sungji-drop/pkg/enums"
	"github.com/sueworkspace/sungji-drop/pkg/logger"
	"github.com/sueworkspace/sungji-drop/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// redisStore is the slice of the redis client the HTTP layer touches.
type redisStore interface {
	redis.Pinger
	redis.IdempotencyStore
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Services bundles the domain services the router mounts.
type Services struct {
	Auth          auth.Service
	Users         users.Service
	Catalog       catalog.Service
	Quotes        quotes.Service
	Chat          chat.Service
	Dealers       dealers.Service
	Notifications notifications.Service
	Stats         stats.Service
	Streamer      *realtime.Streamer
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient redisStore,
	sessions sessionManager,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)
	otpPolicy := middleware.NewPhoneRateLimitPolicy(
		"otp",
		cfg.AuthRateLimit.OTPWindow,
		cfg.AuthRateLimit.OTPIPLimit,
		cfg.AuthRateLimit.OTPPhoneLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readinessDeps(dbP, redisClient)))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg), middleware.Idempotency(redisClient, logg)).Post("/register", controllers.AuthRegister(svcs.Auth, logg))
		r.With(middleware.AuthRateLimit(otpPolicy, redisClient, logg)).Post("/otp/request", controllers.AuthRequestOTP(svcs.Auth, logg))
		r.With(middleware.AuthRateLimit(otpPolicy, redisClient, logg)).Post("/otp/verify", controllers.AuthVerifyOTP(svcs.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(sessions, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(sessions, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.Idempotency(redisClient, logg))
		r.Use(middleware.RateLimit(redisClient, logg))

		r.Route("/profiles", func(r chi.Router) {
			r.Get("/me", controllers.ProfileMe(svcs.Users, logg))
			r.Put("/me", controllers.ProfileUpdate(svcs.Users, logg))
		})

		r.Route("/devices", func(r chi.Router) {
			r.Get("/", controllers.DeviceList(svcs.Catalog, logg))
			r.Get("/{deviceId}", controllers.DeviceDetail(svcs.Catalog, logg))
		})

		r.Route("/quote-requests", func(r chi.Router) {
			r.Post("/", controllers.QuoteRequestCreate(svcs.Quotes, logg))
			r.Get("/", controllers.QuoteRequestList(svcs.Quotes, logg))
			r.Get("/stream", controllers.QuoteRequestStream(svcs.Streamer, logg))
			r.Get("/{requestId}", controllers.QuoteRequestDetail(svcs.Quotes, logg))
			r.Get("/{requestId}/quotes", controllers.QuoteRequestQuotes(svcs.Quotes, logg))
			r.Post("/{requestId}/cancel", controllers.QuoteRequestCancel(svcs.Quotes, logg))
		})

		r.Post("/quotes/{quoteId}/accept", controllers.QuoteAccept(svcs.Quotes, logg))

		r.Route("/chat/rooms", func(r chi.Router) {
			r.Post("/", controllers.ChatRoomOpen(svcs.Chat, logg))
			r.Get("/", controllers.ChatRoomList(svcs.Chat, logg))
			r.Get("/{roomId}/messages", controllers.ChatMessageList(svcs.Chat, logg))
			r.Post("/{roomId}/messages", controllers.ChatMessageSend(svcs.Chat, logg))
			r.Post("/{roomId}/read", controllers.ChatMarkRead(svcs.Chat, logg))
			r.Get("/{roomId}/stream", controllers.ChatRoomStream(svcs.Chat, svcs.Streamer, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(svcs.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(svcs.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(svcs.Notifications, logg))
		})

		r.Route("/dealers", func(r chi.Router) {
			r.Get("/{dealerId}", controllers.DealerDetail(svcs.Dealers, logg))
			r.Get("/{dealerId}/reviews", controllers.DealerReviewList(svcs.Dealers, logg))
			r.Post("/{dealerId}/reviews", controllers.DealerReviewCreate(svcs.Dealers, logg))
		})

		r.Get("/stats/me", controllers.StatsMe(svcs.Stats, logg))

		r.Route("/dealer", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.ActorRoleDealer), logg))
			r.Post("/quotes", controllers.DealerQuoteSubmit(svcs.Quotes, logg))
		})
	})

	return r
}

func readinessDeps(dbP db.Pinger, redisClient redisStore) map[string]controllers.Pinger {
	deps := map[string]controllers.Pinger{}
	if dbP != nil {
		deps["database"] = dbP
	}
	if redisClient != nil {
		deps["redis"] = redisClient
	}
	return deps
}
