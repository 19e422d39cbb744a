package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github-topic-bot/internal/bot/callbacks"
	"github-topic-bot/internal/bot/commands"
	"github-topic-bot/internal/bot/middleware"
	"github-topic-bot/internal/cache"
	"github-topic-bot/internal/config"
	"github-topic-bot/internal/db"
	"github-topic-bot/internal/github"
	"github-topic-bot/internal/logging"
	"github-topic-bot/internal/telegram"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers"
)

func main() {
	cfg := config.Load()
	logger := logging.NewLogger(os.Stderr, logging.ParseLevel(cfg.LogLevel))
	slog.SetDefault(logger)

	database, err := db.Connect(cfg)
	if err != nil {
		logger.Error("failed to connect to DB", "err", err)
		os.Exit(1)
	}

	b, err := gotgbot.NewBot(cfg.TelegramToken, nil)
	if err != nil {
		logger.Error("failed to create bot", "err", err)
		os.Exit(1)
	}

	gateway := telegram.NewGateway(b, cfg.ChatID)
	pending := cache.New[int64, bool]()
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			pending.Cleanup()
		}
	}()

	dispatcher := ext.NewDispatcher(&ext.DispatcherOpts{
		Error: func(b *gotgbot.Bot, ctx *ext.Context, err error) ext.DispatcherAction {
			logger.Error("error processing update", "err", err)
			if sendErr := gateway.SendMessage(cfg.AdminChatID, 0, "⚠️ Something went wrong while handling that update\\.", nil); sendErr != nil {
				logger.Error("failed to report error to admin", "err", sendErr)
			}
			return ext.DispatcherActionNoop
		},
	})
	updater := ext.NewUpdater(dispatcher, nil)

	// Everything below only runs for the authorized admin chat.
	dispatcher.AddHandlerToGroup(handlers.NewMessage(nil, middleware.RequireChat(cfg.AdminChatID)), -1)
	dispatcher.AddHandlerToGroup(handlers.NewCallback(nil, middleware.RequireChat(cfg.AdminChatID)), -1)

	cmdHandler := commands.NewCommandHandler(database, gateway, pending, logger)
	dispatcher.AddHandler(handlers.NewCommand("start", cmdHandler.Start))
	dispatcher.AddHandler(handlers.NewCommand("addrepo", cmdHandler.AddRepo))
	dispatcher.AddHandler(handlers.NewCommand("repos", cmdHandler.Repos))
	dispatcher.AddHandler(handlers.NewCommand("removerepo", cmdHandler.RemoveRepo))
	dispatcher.AddHandler(handlers.NewCommand("help", cmdHandler.Help))

	dispatcher.AddHandler(handlers.NewMessage(func(msg *gotgbot.Message) bool {
		if msg.GetText() == "" {
			return false
		}

		ents := msg.GetEntities()
		if len(ents) != 0 && ents[0].Offset == 0 && ents[0].Type == "bot_command" {
			return false
		}

		return true
	}, cmdHandler.HandleText))

	cbHandler := callbacks.NewCallbackHandler(database, gateway, pending, logger)
	dispatcher.AddHandler(handlers.NewCallback(nil, cbHandler.HandleMenu))

	go func() {
		err := updater.StartPolling(b, &ext.PollingOpts{
			DropPendingUpdates: true,
			GetUpdatesOpts: &gotgbot.GetUpdatesOpts{
				Timeout: 9,
				RequestOpts: &gotgbot.RequestOpts{
					Timeout: time.Second * 10,
				},
			},
		})
		if err != nil {
			logger.Error("failed to start polling", "err", err)
			os.Exit(1)
		}
	}()

	logger.Info("bot started", "username", b.User.Username)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		html := fmt.Sprintf(`
		<html>
		<head><title>GitHub Topic Bot</title></head>
		<body style="font-family: sans-serif; text-align: center; padding: 50px;">
			<h1>GitHub Topic Bot</h1>
			<p>The bot is running successfully.</p>
			<p><a href="https://t.me/%s">Open in Telegram</a></p>
		</body>
		</html>`, b.User.Username)
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(html))
	})

	webhookServer := github.NewWebhookServer(cfg.GitHubWebhookSecret, database, gateway, logger)
	mux.HandleFunc("/api/github/webhook", webhookServer.Handler)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()
	logger.Info("server listening", "port", cfg.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "err", err)
	}
	if err := updater.Stop(); err != nil {
		logger.Error("failed to stop updater", "err", err)
	}
	if err := database.Close(shutdownCtx); err != nil {
		logger.Error("failed to close database", "err", err)
	}
}
