package cmd

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	pubnub "github.com/pubnub/go/v7"

	"ticket-backend/config"
	"ticket-backend/handlers"
	"ticket-backend/internal/upi"
	_ "ticket-backend/migrations"
	"ticket-backend/monitoring"
	"ticket-backend/security"
	"ticket-backend/services"
	"ticket-backend/utils"
)

func Start() error {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize Redis (fatal if the counter store is unreachable)
	redisClient := utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	defer redisClient.Close()

	// Initialize PubNub, only when keys are configured
	var pn *pubnub.PubNub
	if cfg.PubNubSubscribeKey != "" {
		pnConfig := pubnub.NewConfigWithUserId(pubnub.UserId(cfg.PubNubUUID))
		pnConfig.PublishKey = cfg.PubNubPublishKey
		pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
		pnConfig.SecretKey = cfg.PubNubSecretKey

		pn = pubnub.NewPubNub(pnConfig)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize services
	counterStore := services.NewCounterStore(redisClient)
	paymentStore := services.NewRecordPaymentStore(app)
	issuer := upi.NewIssuer(upi.Config{
		PayeeVPA:  cfg.UPIPayeeVPA,
		PayeeName: cfg.UPIPayeeName,
		Currency:  cfg.UPICurrency,
		Note:      cfg.UPINote,
		QRSize:    cfg.QRSize,
	})
	ticketService := services.NewTicketService(counterStore, paymentStore, issuer, cfg)
	paymentService := services.NewPaymentService(paymentStore, pn, cfg)

	// Initialize handlers
	ticketHandler := handlers.NewTicketHandler(app, ticketService)
	paymentHandler := handlers.NewPaymentHandler(app, paymentService)
	adminHandler := handlers.NewAdminHandler(app, counterStore, paymentStore)

	limiter := security.NewRateLimiter(redisClient, cfg.RateLimitPerWindow, cfg.RateLimitWindow)

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: true,
	})

	// Setup graceful shutdown
	go handleShutdown(cancel)

	// Ops listener for Prometheus scrapes
	if cfg.EnableMetrics {
		go monitoring.StartOpsServer(cfg.MetricsPort, redisClient)
	}

	// Register routes
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		// The counter record must exist before any allocation runs.
		// Idempotent, so redundant runs across instances are harmless.
		if err := counterStore.EnsureInitialized(ctx); err != nil {
			return err
		}
		slog.Info("ticket counter initialized")

		// Out-of-band confirmation bridge
		if pn != nil {
			go paymentService.ListenForConfirmations(ctx)
		}

		se.Router.BindFunc(security.RequestLogger())

		// Purchase endpoints
		se.Router.POST("/buy-ticket", ticketHandler.BuyTicket).BindFunc(limiter.Limit())
		se.Router.POST("/confirm-payment", paymentHandler.ConfirmPayment).BindFunc(limiter.Limit())

		// Admin endpoints
		se.Router.GET("/api/admin/stats", adminHandler.GetStats).BindFunc(security.AdminAuth(cfg.AdminKeyHash))

		// Health check
		se.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return e.JSON(http.StatusServiceUnavailable, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			return e.JSON(http.StatusOK, map[string]string{"status": "healthy"})
		})

		log.Println("Server routes registered")

		return se.Next()
	})

	// Start server
	return app.Start()
}

// handleShutdown handles graceful shutdown
func handleShutdown(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
	cancel()
}
