package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/nrednav/cuid2"

	"github.com/Neeraj-0217/real-time-chat-app/internal/boot"
	"github.com/Neeraj-0217/real-time-chat-app/internal/handlers"
	"github.com/Neeraj-0217/real-time-chat-app/internal/presence"
	"github.com/Neeraj-0217/real-time-chat-app/internal/registry"
	"github.com/Neeraj-0217/real-time-chat-app/internal/relay"
	"github.com/Neeraj-0217/real-time-chat-app/internal/service/auth"
	"github.com/Neeraj-0217/real-time-chat-app/internal/service/chat"
	"github.com/Neeraj-0217/real-time-chat-app/internal/service/media"
	"github.com/Neeraj-0217/real-time-chat-app/internal/service/translate"
	"github.com/Neeraj-0217/real-time-chat-app/internal/store"
)

func main() {
	config, err := boot.Load()
	if err != nil {
		log.Fatalf("boot: %+v", err)
	}

	db, err := store.New(config.Database.Path)
	if err != nil {
		log.Fatalf("store: %+v", err)
	}
	defer db.Close()

	mediaService, err := media.New(config.Media.Dir)
	if err != nil {
		log.Fatalf("media: %+v", err)
	}

	server := echo.New()
	server.HideBanner = true
	server.Use(middleware.BodyLimit("10M"))
	server.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string {
			return cuid2.Generate()
		},
	}))
	server.Use(echoprometheus.NewMiddleware("chat"))
	server.Use(middleware.Recover())

	server.Logger.SetLevel(log.INFO)
	logger := log.New("chat")
	logger.SetLevel(log.INFO)
	if config.IsDevelopment() {
		server.Logger.SetLevel(log.DEBUG)
		logger.SetLevel(log.DEBUG)
	}

	connections := registry.New()
	notifier := presence.New(connections, db)
	messageRelay := relay.New(connections, db, db, db, notifier, logger)

	var translator chat.Translator
	if config.Translation.Enabled {
		translator = translate.New(config.Translation.Endpoint)
	}

	authService := auth.New(db, config)
	chatService := chat.New(db, db, db, connections, translator, logger)

	server.POST("/register", handlers.Register(authService, mediaService))
	server.POST("/login", handlers.Login(authService))
	server.GET("/auth/verify", handlers.Verify(authService))
	server.GET("/logout", handlers.Logout())

	server.GET("/ws/:clientID", handlers.WebSocket(messageRelay))

	server.GET("/chat/history/:friendID", handlers.ChatHistory(authService, chatService))
	server.POST("/chat/upload", handlers.UploadAttachment(authService, mediaService))
	server.PUT("/chat/preferences/:friendID", handlers.SetChatPreference(authService, chatService))

	server.GET("/users/search", handlers.SearchUsers(authService, chatService))
	server.GET("/user/status/:userID", handlers.UserStatus(chatService))
	server.PATCH("/users/me", handlers.UpdateProfile(authService, mediaService))

	server.GET("/debug/connections", handlers.DebugConnections(authService, connections, db))
	server.POST("/debug/fix-online-status", handlers.FixOnlineStatus(authService, connections, db))

	server.Static("/media", mediaService.Dir())

	go func() {
		metrics := echo.New()
		metrics.HideBanner = true
		metrics.GET("/metrics", echoprometheus.NewHandler())
		if err := metrics.Start(config.Server.MetricsAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	go func() {
		if err := server.Start(config.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			server.Logger.Fatal("shutting down the server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		server.Logger.Fatal(err)
	}
}
