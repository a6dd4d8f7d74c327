package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/crowdforge/crowdforge-backend/internal/config"
	"github.com/crowdforge/crowdforge-backend/internal/handler"
	"github.com/crowdforge/crowdforge-backend/internal/logging"
	"github.com/crowdforge/crowdforge-backend/internal/middleware"
	"github.com/crowdforge/crowdforge-backend/internal/repository"
	"github.com/crowdforge/crowdforge-backend/internal/service"
	"github.com/crowdforge/crowdforge-backend/internal/service/funding"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("crowdforge-api", cfg.LogLevel, cfg.AppEnv)

	db, err := connectDB(cfg)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	users := repository.NewUserRepository(db)
	campaigns := repository.NewCampaignRepository(db)
	ledgers := repository.NewLedgerRepository(db)
	donations := repository.NewDonationRepository(db)
	withdrawals := repository.NewWithdrawalRepository(db)
	comments := repository.NewCommentRepository(db)
	messages := repository.NewMessageRepository(db)
	contacts := repository.NewContactRepository(db)
	reports := repository.NewReportRepository(db)

	notifier := service.NewNotifier(256, slog.Default())
	notifier.Subscribe(logEvents)

	gateway := service.NewGatewayClient(cfg.GatewayBaseURL)
	fundingSvc := funding.NewService(campaigns, ledgers, donations, withdrawals, users, gateway, notifier, db)
	campaignSvc := service.NewCampaignService(campaigns)
	commentSvc := service.NewCommentService(comments, campaigns, users)
	messageSvc := service.NewMessageService(messages, campaigns, users, notifier)

	healthHandler := handler.NewHealthHandler(db)
	authHandler := handler.NewAuthHandler(users, cfg.JWTSecret, cfg.JWTExpiry)
	userHandler := handler.NewUserHandler(users)
	campaignHandler := handler.NewCampaignHandler(campaignSvc, fundingSvc)
	paymentHandler := handler.NewPaymentHandler(fundingSvc, campaignSvc, cfg.GatewaySecret, cfg.GatewayCallbackURL)
	commentHandler := handler.NewCommentHandler(commentSvc)
	messageHandler := handler.NewMessageHandler(messageSvc)
	contactHandler := handler.NewContactHandler(contacts)
	reportHandler := handler.NewReportHandler(reports)
	adminHandler := handler.NewAdminHandler(users, campaigns, reports)

	authed := middleware.Auth(cfg.JWTSecret)
	admin := func(h http.HandlerFunc) http.Handler {
		return authed(middleware.Admin(h))
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", healthHandler.Liveness)
	mux.HandleFunc("GET /health/ready", healthHandler.Readiness)

	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)

	mux.Handle("GET /api/v1/users/me", authed(http.HandlerFunc(userHandler.GetProfile)))
	mux.Handle("PUT /api/v1/users/me", authed(http.HandlerFunc(userHandler.UpdateProfile)))

	mux.HandleFunc("GET /api/v1/campaigns", campaignHandler.List)
	mux.HandleFunc("GET /api/v1/campaigns/{id}", campaignHandler.Get)
	mux.HandleFunc("GET /api/v1/campaigns/{id}/funds", campaignHandler.GetFunds)
	mux.Handle("POST /api/v1/campaigns", authed(http.HandlerFunc(campaignHandler.Create)))
	mux.Handle("PUT /api/v1/campaigns/{id}", authed(http.HandlerFunc(campaignHandler.Update)))
	mux.Handle("DELETE /api/v1/campaigns/{id}", authed(http.HandlerFunc(campaignHandler.Delete)))
	mux.Handle("GET /api/v1/users/me/campaigns", authed(http.HandlerFunc(campaignHandler.ListMine)))

	mux.HandleFunc("GET /api/v1/campaigns/{id}/comments", commentHandler.List)
	mux.Handle("POST /api/v1/campaigns/{id}/comments", authed(http.HandlerFunc(commentHandler.Add)))
	mux.Handle("POST /api/v1/campaigns/{id}/comments/{commentID}/reply", authed(http.HandlerFunc(commentHandler.Reply)))

	mux.Handle("GET /api/v1/campaigns/{id}/messages", authed(http.HandlerFunc(messageHandler.List)))
	mux.Handle("POST /api/v1/campaigns/{id}/messages", authed(http.HandlerFunc(messageHandler.Send)))
	mux.Handle("POST /api/v1/campaigns/{id}/messages/{messageID}/reply", authed(http.HandlerFunc(messageHandler.Reply)))

	mux.Handle("POST /api/v1/payments/initiate", authed(http.HandlerFunc(paymentHandler.InitiatePayment)))
	mux.HandleFunc("POST /api/v1/payments/gateway/callback", paymentHandler.GatewayCallback)
	mux.Handle("POST /api/v1/payments/withdraw", authed(http.HandlerFunc(paymentHandler.Withdraw)))
	mux.Handle("GET /api/v1/users/me/ledger", authed(http.HandlerFunc(paymentHandler.GetLedger)))

	mux.HandleFunc("POST /api/v1/contact", contactHandler.Submit)
	mux.HandleFunc("POST /api/v1/reports", reportHandler.Submit)

	mux.Handle("GET /api/v1/admin/users", admin(adminHandler.ListUsers))
	mux.Handle("PUT /api/v1/admin/users/{id}/status", admin(adminHandler.UpdateUserStatus))
	mux.Handle("GET /api/v1/admin/campaigns", admin(adminHandler.ListCampaigns))
	mux.Handle("PUT /api/v1/admin/campaigns/{id}/verification", admin(adminHandler.VerifyCampaign))
	mux.Handle("DELETE /api/v1/admin/campaigns/{id}", admin(adminHandler.DeleteCampaign))
	mux.Handle("GET /api/v1/admin/reports", admin(adminHandler.ListReports))
	mux.Handle("PUT /api/v1/admin/reports/{id}/resolve", admin(adminHandler.ResolveReport))
	mux.Handle("DELETE /api/v1/admin/reports/{id}", admin(adminHandler.DeleteReport))

	root := middleware.Tracing(middleware.Logging(middleware.Recovery(mux)))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go notifier.Start(ctx)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           root,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func logEvents(ctx context.Context, event any) {
	switch e := event.(type) {
	case funding.DonationApplied:
		slog.Info("donation applied",
			"transaction_id", e.TransactionID,
			"campaign_id", e.CampaignID,
			"amount", e.Amount,
		)
	case funding.WithdrawalCompleted:
		slog.Info("withdrawal completed",
			"transaction_id", e.TransactionID,
			"campaign_id", e.CampaignID,
			"amount", e.Amount,
		)
	}
}

func connectDB(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connectDB: %w", err)
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetimeS) * time.Second)
	db.SetConnMaxIdleTime(time.Duration(cfg.DBConnMaxIdleTimeS) * time.Second)

	for i := range 30 {
		if err = db.Ping(); err == nil {
			return db, nil
		}
		slog.Info("waiting for database", "attempt", i+1)
		time.Sleep(time.Second)
	}

	db.Close()
	return nil, fmt.Errorf("connectDB: gave up after 30 attempts: %w", err)
}
