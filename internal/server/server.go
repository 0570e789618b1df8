package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"hourskill/internal/ads"
	"hourskill/internal/auth"
	"hourskill/internal/config"
	"hourskill/internal/events"
	"hourskill/internal/ledger"
	"hourskill/internal/purchase"
	"hourskill/internal/session"
	"hourskill/internal/user"
	"hourskill/internal/video"
	"hourskill/internal/wallet"
)

// Services are the domain services behind the HTTP handlers.
type Services struct {
	Users    user.Service
	Wallets  wallet.Service
	Videos   video.Service
	Sessions session.Service
	Purchase purchase.Service
	Ads      ads.Service
}

// NewServices wires the Postgres-backed repositories into the domain
// services. cache and publisher may be nil.
func NewServices(database *sqlx.DB, cache *wallet.BalanceCache, publisher events.Publisher, jwtSecret string) Services {
	ledgerRepo := ledger.NewRepository()
	videoRepo := video.NewRepository()
	sessionRepo := session.NewRepository()

	wallets := wallet.NewService(database, wallet.NewRepository(), ledgerRepo, cache, publisher)
	users := user.NewService(database, user.NewRepository(), wallets, jwtSecret)

	return Services{
		Users:    users,
		Wallets:  wallets,
		Videos:   video.NewService(database, videoRepo),
		Sessions: session.NewService(database, sessionRepo),
		Purchase: purchase.NewService(database, videoRepo, sessionRepo, wallets),
		Ads:      ads.NewService(database, wallets, ledgerRepo, users),
	}
}

type Server struct {
	router *gin.Engine
	http   *http.Server
	config *config.Config
}

func New(cfg *config.Config, pinger Pinger, svc Services) *Server {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		RequestIDMiddleware(),
		RequestLoggingMiddleware(),
		MetricsMiddleware(),
		CORSMiddleware(),
		RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	registerRoutes(router, cfg.JWTSecret, pinger, svc)

	return &Server{
		router: router,
		config: cfg,
		http: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func registerRoutes(router *gin.Engine, jwtSecret string, pinger Pinger, svc Services) {
	userHandler := user.NewHandler(svc.Users)
	walletHandler := wallet.NewHandler(svc.Wallets)
	videoHandler := video.NewHandler(svc.Videos)
	purchaseHandler := purchase.NewHandler(svc.Purchase)
	sessionHandler := session.NewHandler(svc.Sessions)
	adsHandler := ads.NewHandler(svc.Ads)

	router.GET("/health", Health(pinger))
	router.GET("/metrics", Metrics())
	SetupSwagger(router)
	router.GET("/videos", videoHandler.ListVideos)

	public := router.Group("/auth")
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.RefreshToken)
	}

	protected := router.Group("/")
	protected.Use(auth.AuthMiddleware(jwtSecret))
	{
		protected.GET("/me", userHandler.GetMe)
		protected.GET("/wallet", walletHandler.GetBalance)
		protected.GET("/wallet/transactions", walletHandler.ListTransactions)
		protected.GET("/videos/:videoID", purchaseHandler.GetVideo)
		protected.POST("/videos/:videoID/unlock", purchaseHandler.Unlock)
		protected.POST("/sessions/:sessionID/ping", sessionHandler.Ping)
		protected.POST("/ads/reward", adsHandler.Reward)
	}

	creator := router.Group("/")
	creator.Use(auth.AuthMiddleware(jwtSecret), auth.RequireRole(auth.RoleCreator))
	{
		creator.POST("/videos", videoHandler.CreateVideo)
		creator.DELETE("/videos/:videoID", videoHandler.DeleteVideo)
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
