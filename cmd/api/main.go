package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/deallock/deallock/internal/account"
	accountStore "github.com/deallock/deallock/internal/account/store"
	"github.com/deallock/deallock/internal/config"
	"github.com/deallock/deallock/internal/database"
	"github.com/deallock/deallock/internal/deal"
	dealStore "github.com/deallock/deallock/internal/deal/store"
	deallockHttp "github.com/deallock/deallock/internal/http"
	accountHandler "github.com/deallock/deallock/internal/http/account"
	"github.com/deallock/deallock/internal/http/auth"
	dealHandler "github.com/deallock/deallock/internal/http/deal"
	notificationHandler "github.com/deallock/deallock/internal/http/notification"
	"github.com/deallock/deallock/internal/messaging"
	"github.com/deallock/deallock/internal/notification"
	notificationStore "github.com/deallock/deallock/internal/notification/store"
	"github.com/deallock/deallock/internal/token"
	tokenStore "github.com/deallock/deallock/internal/token/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()

	var mail account.EmailSender = messaging.LogMailer{}
	if cfg.Mail.From != "" {
		ses, err := messaging.NewSESMailer(ctx, cfg.Mail.AWSRegion, cfg.Mail.From)
		if err != nil {
			slog.Error("failed to set up SES", "error", err)
			os.Exit(1)
		}

		mail = ses
	}

	var sms deal.SMSSender = messaging.LogTexter{}
	if cfg.SMS.Enabled {
		sns, err := messaging.NewSNSTexter(ctx, cfg.Mail.AWSRegion, cfg.SMS.SenderID)
		if err != nil {
			slog.Error("failed to set up SNS", "error", err)
			os.Exit(1)
		}

		sms = sns
	}

	dispatch := messaging.NewDispatcher(cfg.Dispatch.Timeout)

	var (
		tokenService        = token.NewStore(tokenStore.New(db))
		accountService      = account.NewService(accountStore.New(db), tokenService, mail, dispatch, cfg.App.BaseURL)
		notificationService = notification.NewService(notificationStore.New(db), accountService)
		dealService         = deal.NewService(dealStore.New(db), accountService, notificationService, mail, sms, dispatch, cfg.App.BaseURL)
	)

	jwt := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)

	var (
		accountH      = accountHandler.NewHandler(accountService, jwt)
		dealH         = dealHandler.NewHandler(dealService)
		notificationH = notificationHandler.NewHandler(notificationService)
	)

	router := deallockHttp.New(jwt, accountH, dealH, notificationH)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "app", cfg.App.Name, "port", port)

	server := &http.Server{
		Addr:         port,
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	if err := server.ListenAndServe(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
