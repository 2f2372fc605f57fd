package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"heartlink/internal/domain/ports/adapter"
	"heartlink/internal/infra/redis"
	"heartlink/internal/usecase"
)

// Server wires the HTTP surface. Construction takes every use case plus the
// webhook verifier; routing happens in Router.
type Server struct {
	authUC    usecase.AuthUseCase
	paymentUC usecase.PaymentUseCase
	orderUC   usecase.OrderUseCase
	webhookUC usecase.WebhookUseCase
	matchUC   usecase.MatchUseCase
	chatUC    usecase.ChatUseCase
	notifUC   usecase.NotificationUseCase
	subUC     usecase.SubscriptionUseCase

	auth     *AuthManager
	verifier adapter.WebhookVerifier
	limiter  *redis.RateLimiter // nil disables rate limiting
	ws       http.Handler       // nil disables the /ws route
	dev      bool
	log      *zerolog.Logger
}

type ServerDeps struct {
	AuthUC    usecase.AuthUseCase
	PaymentUC usecase.PaymentUseCase
	OrderUC   usecase.OrderUseCase
	WebhookUC usecase.WebhookUseCase
	MatchUC   usecase.MatchUseCase
	ChatUC    usecase.ChatUseCase
	NotifUC   usecase.NotificationUseCase
	SubUC     usecase.SubscriptionUseCase

	Auth     *AuthManager
	Verifier adapter.WebhookVerifier
	Limiter  *redis.RateLimiter
	WS       http.Handler
	Dev      bool
}

func NewServer(deps ServerDeps, logger *zerolog.Logger) *Server {
	l := logger.With().Str("component", "WebServer").Logger()
	return &Server{
		authUC:    deps.AuthUC,
		paymentUC: deps.PaymentUC,
		orderUC:   deps.OrderUC,
		webhookUC: deps.WebhookUC,
		matchUC:   deps.MatchUC,
		chatUC:    deps.ChatUC,
		notifUC:   deps.NotifUC,
		subUC:     deps.SubUC,
		auth:      deps.Auth,
		verifier:  deps.Verifier,
		limiter:   deps.Limiter,
		ws:        deps.WS,
		dev:       deps.Dev,
		log:       &l,
	}
}

func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(TraceID)
	r.Use(Recover(s.log))
	r.Use(RequestLog(s.log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		// Webhook deliveries authenticate by signature, not by bearer token.
		r.Post("/payments/subscription/webhook", s.handleWebhook)

		r.Group(func(r chi.Router) {
			r.Use(s.auth.RequireAuth)

			r.Post("/payments/chat/initialize", s.handlePaymentInitialize)
			r.Post("/payments/chat/verify", s.handlePaymentVerify)
			r.Get("/payments/chat/access", s.handleChatAccess)
			r.Post("/orders", s.handleOrderCreate)
			r.Get("/orders", s.handleOrderList)

			r.Get("/plans", s.handlePlanList)
			r.Post("/subscriptions", s.handleSubscribe)
			r.Delete("/subscriptions", s.handleSubscriptionCancel)

			r.Get("/profiles/discover", s.handleDiscover)
			r.Post("/swipes", s.handleSwipe)
			r.Get("/matches", s.handleMatchList)

			r.Get("/notifications", s.handleNotificationList)
			r.Post("/notifications/{id}/read", s.handleNotificationRead)

			// Chat is the paid surface.
			r.Group(func(r chi.Router) {
				r.Use(RequireChatAccess(s.paymentUC))
				r.Get("/matches/{id}/messages", s.handleMessageList)
				r.Post("/matches/{id}/messages", s.handleMessageSend)
			})
		})
	})

	if s.ws != nil {
		r.With(s.auth.RequireAuth).Get("/ws", s.ws.ServeHTTP)
	}

	return r
}

// allow consults the rate limiter; a nil limiter or a redis failure lets the
// request through. Availability beats strictness here.
func (s *Server) allow(r *http.Request, key string, limit int) bool {
	if s.limiter == nil {
		return true
	}
	ok, err := s.limiter.Allow(r.Context(), key, limit, rateWindow)
	if err != nil {
		s.log.Warn().Err(err).Msg("rate limiter unavailable")
		return true
	}
	return ok
}
