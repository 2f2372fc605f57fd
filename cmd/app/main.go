package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"heartlink/internal/config"
	"heartlink/internal/domain/ports/adapter"
	pg "heartlink/internal/infra/db/postgres"
	"heartlink/internal/infra/logging"
	"heartlink/internal/infra/metrics"
	"heartlink/internal/infra/payment"
	red "heartlink/internal/infra/redis"
	"heartlink/internal/infra/sched"
	"heartlink/internal/infra/web"
	"heartlink/internal/infra/ws"
	"heartlink/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, webhook signature bypass)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("dev mode enabled, webhook signature checks are bypassed")
	}
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.PoolSize)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connect failed")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)
	presence := red.NewPresence(redisClient, cfg.Redis.PresenceTTL)

	// ---- Repositories ----
	userRepo := pg.NewUserRepo(pool)
	orderRepo := pg.NewOrderRepo(pool)
	txnRepo := pg.NewPaymentTransactionRepo(pool)
	subRepo := pg.NewSubscriptionRepo(pool)
	planRepo := pg.NewSubscriptionPlanRepo(pool)
	swipeRepo := pg.NewSwipeRepo(pool)
	matchRepo := pg.NewMatchRepo(pool)
	messageRepo := pg.NewMessageRepo(pool)
	notifRepo := pg.NewNotificationRepo(pool)
	txManager := pg.NewTxManager(pool)

	// ---- Payment gateway ----
	gateway := payment.NewPaystackGateway(cfg.Payment.Paystack.SecretKey, cfg.Payment.Paystack.BaseURL, cfg.Payment.Paystack.Timeout)
	var verifier *payment.PaystackWebhookVerifier
	if cfg.Payment.Paystack.WebhookSecret != "" {
		verifier = payment.NewPaystackWebhookVerifier(cfg.Payment.Paystack.WebhookSecret)
	}

	// ---- WebSocket hub ----
	hub := ws.NewHub(presence, logger)
	go hub.Run(ctx)

	// ---- Use cases ----
	authUC := usecase.NewAuthUseCase(userRepo, logger)
	orderUC := usecase.NewOrderUseCase(orderRepo, logger)
	paymentUC := usecase.NewPaymentUseCase(txnRepo, userRepo, gateway, txManager, cfg.Payment.Currency, logger)
	webhookUC := usecase.NewWebhookUseCase(txnRepo, userRepo, subRepo, notifRepo, txManager, cfg.Payment.Currency, logger)
	matchUC := usecase.NewMatchUseCase(userRepo, swipeRepo, matchRepo, notifRepo, hub, logger)
	chatUC := usecase.NewChatUseCase(matchRepo, messageRepo, notifRepo, hub, presence, logger)
	notifUC := usecase.NewNotificationUseCase(notifRepo)
	subUC := usecase.NewSubscriptionUseCase(userRepo, planRepo, subRepo, gateway, logger)

	// ---- HTTP server ----
	authManager := web.NewAuthManager(cfg.Auth)
	wsHandler := ws.Handler(hub, chatUC, paymentUC, func(r *http.Request) string {
		return web.UserIDFrom(r.Context())
	}, logger)

	srv := web.NewServer(web.ServerDeps{
		AuthUC:    authUC,
		PaymentUC: paymentUC,
		OrderUC:   orderUC,
		WebhookUC: webhookUC,
		MatchUC:   matchUC,
		ChatUC:    chatUC,
		NotifUC:   notifUC,
		SubUC:     subUC,
		Auth:      authManager,
		Verifier:  verifierOrNil(verifier),
		Limiter:   rateLimiter,
		WS:        wsHandler,
		Dev:       cfg.Runtime.Dev,
	}, logger)

	// The websocket route cannot live under TimeoutHandler (no hijack
	// support) and must outlive WriteTimeout, so /ws bypasses both.
	router := srv.Router()
	root := http.NewServeMux()
	root.Handle("/ws", router)
	root.Handle("/", http.TimeoutHandler(router, cfg.Server.RequestTimeout, `{"success":false,"error":"request timed out"}`))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           root,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		IdleTimeout:       2 * cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Access expiry worker ----
	worker := sched.NewExpiryWorker(cfg.Scheduler.AccessExpiryInterval, userRepo, logger)
	go func() { _ = worker.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown error")
	}
	cancel()
}

// verifierOrNil keeps a typed-nil pointer from masquerading as a non-nil
// interface inside the server's misconfiguration check.
func verifierOrNil(v *payment.PaystackWebhookVerifier) adapter.WebhookVerifier {
	if v == nil {
		return nil
	}
	return v
}
