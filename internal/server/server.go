package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/AlexFame/bazaar-sub001/internal/auth"
	"github.com/AlexFame/bazaar-sub001/internal/config"
	"github.com/AlexFame/bazaar-sub001/internal/handler"
	appmw "github.com/AlexFame/bazaar-sub001/internal/middleware"
	"github.com/AlexFame/bazaar-sub001/internal/notify"
	"github.com/AlexFame/bazaar-sub001/internal/repository"
	"github.com/AlexFame/bazaar-sub001/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Server struct {
	e             *echo.Echo
	notifications service.NotificationService
	log           *zap.Logger
}

// Options carries build metadata and test hooks; zero values are fine.
type Options struct {
	GitSHA    string
	BuildTime string
	// Sender overrides the delivery channel chosen from config.
	Sender notify.Sender
}

func allowOrigin(suffixes []string) func(string) (bool, error) {
	return func(origin string) (bool, error) {
		low := strings.ToLower(origin)
		if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
			strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
			return true, nil
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false, nil
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return false, nil
		}
		host := u.Hostname()
		for _, s := range suffixes {
			s = strings.TrimSpace(s)
			if s != "" && (host == s || strings.HasSuffix(host, "."+s)) {
				return true, nil
			}
		}
		return false, nil
	}
}

func senderFor(cfg *config.Config, log *zap.Logger) notify.Sender {
	if !cfg.NotifyEnabled || cfg.BotToken == "" {
		log.Info("notification delivery disabled; notifications are stored in the inbox only")
		return notify.Nop{}
	}
	return notify.NewTelegramSender(cfg.NotifyAPIBase, cfg.BotToken, &http.Client{Timeout: cfg.NotifyTimeout})
}

func New(db *gorm.DB, cfg *config.Config, log *zap.Logger, opts Options) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			log.Info("request", fields...)
			return nil
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization", "X-Init-Data"},
		AllowCredentials: true,
		AllowOriginFunc:  allowOrigin(cfg.AllowedOriginSuffixes),
	}))

	accountRepo := repository.NewAccountRepository(db)
	listingRepo := repository.NewListingRepository(db)
	convRepo := repository.NewConversationRepository(db)
	offerRepo := repository.NewOfferRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	sender := opts.Sender
	if sender == nil {
		sender = senderFor(cfg, log)
	}
	notificationSvc := service.NewNotificationService(notificationRepo, accountRepo, sender, cfg.NotifyTimeout, log.Named("notify"))
	resolver := service.NewIdentityResolver(accountRepo, log.Named("identity"))
	accountSvc := service.NewAccountService(accountRepo, log.Named("account"))
	listingSvc := service.NewListingService(listingRepo, log.Named("listing"))
	convSvc := service.NewConversationService(convRepo, listingRepo, notificationSvc, log.Named("conversation"))
	offerSvc := service.NewOfferService(offerRepo, listingRepo, accountRepo, notificationSvc, log.Named("offer"))

	accountHandler := handler.NewAccountHandler(accountSvc, log)
	listingHandler := handler.NewListingHandler(listingSvc, log)
	convHandler := handler.NewConversationHandler(convSvc, log)
	offerHandler := handler.NewOfferHandler(offerSvc, log)
	notificationHandler := handler.NewNotificationHandler(notificationSvc, log)

	if cfg.BotToken == "" {
		log.Warn("BOT_TOKEN is empty; every authenticated request will fail with server_misconfigured")
	}
	authMw := appmw.NewAuthMiddleware(auth.NewVerifier(cfg.BotToken, cfg.AuthMaxAge), resolver, log.Named("auth"))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"ok":         "true",
			"git_sha":    opts.GitSHA,
			"build_time": opts.BuildTime,
		})
	})

	api := e.Group("/api")
	api.GET("/listings/:id", listingHandler.Get)

	require := authMw.RequireAuth
	api.GET("/me", accountHandler.Me, require)
	api.PATCH("/me/notification-preferences", accountHandler.UpdatePreferences, require)
	api.GET("/me/offers", offerHandler.ListMine, require)
	api.POST("/accounts/:id/ban", accountHandler.Ban, require)
	api.DELETE("/accounts/:id/ban", accountHandler.Unban, require)

	api.POST("/listings", listingHandler.Create, require)
	api.PUT("/listings/:id", listingHandler.Update, require)
	api.DELETE("/listings/:id", listingHandler.Delete, require)
	api.POST("/listings/:id/conversations", convHandler.CreateFromListing, require)
	api.POST("/listings/:id/offers", offerHandler.Make, require)
	api.GET("/listings/:id/offers", offerHandler.ListForListing, require)

	api.GET("/conversations", convHandler.List, require)
	api.GET("/conversations/:id", convHandler.Detail, require)
	api.POST("/conversations/:id/messages", convHandler.Send, require)
	api.DELETE("/conversations/:id", convHandler.Delete, require)

	api.POST("/offers/:id/accept", offerHandler.Accept, require)
	api.POST("/offers/:id/reject", offerHandler.Reject, require)

	api.GET("/notifications", notificationHandler.List, require)
	api.POST("/notifications/read", notificationHandler.MarkAllRead, require)

	return &Server{e: e, notifications: notificationSvc, log: log}
}

// Handler exposes the router for in-process use.
func (s *Server) Handler() http.Handler {
	return s.e
}

func (s *Server) Start(addr string) error {
	s.log.Info("starting server", zap.String("addr", addr))
	return s.e.Start(addr)
}

// Shutdown stops accepting requests, then drains queued notifications.
// Notifications raised after this point are dropped.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.e.Shutdown(ctx)
	done := make(chan struct{})
	go func() {
		s.notifications.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.log.Warn("shutdown deadline reached with notifications in flight")
	}
	return err
}

// Flush waits for in-flight notification deliveries.
func (s *Server) Flush() {
	s.notifications.Wait()
}
