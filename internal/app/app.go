package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/amarthakur0/go-api-template/internal/config"
	"github.com/amarthakur0/go-api-template/internal/handler"
	"github.com/amarthakur0/go-api-template/internal/repository"
	"github.com/amarthakur0/go-api-template/internal/service"
	"github.com/amarthakur0/go-api-template/internal/token"
	"github.com/amarthakur0/go-api-template/pkg/observability"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	infra  Infrastructure
	config *config.Config
	router *gin.Engine
	server *http.Server
}

func NewApp(infra Infrastructure, cfg *config.Config) (*App, error) {
	repos := repository.NewRepositories(infra.MySQL())

	signer, err := token.NewSignerFromFiles(
		cfg.Auth.PrivateKeyPath,
		cfg.Auth.PublicKeyPath,
		cfg.Auth.Issuer,
		cfg.Auth.Audience,
		cfg.Auth.WebTokenExpiry.Duration,
		cfg.Auth.MobileTokenExpiry.Duration,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load signing keys: %w", err)
	}

	var mailer service.Mailer = service.NoopMailer{}
	if cfg.SMTP.Host != "" {
		mailer = service.NewSMTPMailer(cfg.SMTP)
	}

	counterStore := service.NewRedisCounterStore(infra.Redis())
	loginLimiter := service.NewLoginLimiter(counterStore, service.LoginLimiterConfig{
		IP: service.LimiterPolicy{
			Points: cfg.Security.LoginIPPoints,
			Window: cfg.Security.LoginIPWindow.Duration,
			Block:  cfg.Security.LoginIPBlock.Duration,
		},
		UsernameIP: service.LimiterPolicy{
			Points: cfg.Security.LoginUserIPPoints,
			Window: cfg.Security.LoginUserIPWindow.Duration,
			Block:  cfg.Security.LoginUserIPBlock.Duration,
		},
	}, infra.Logger())
	apiLimiter := service.NewAPILimiter(counterStore, service.LimiterPolicy{
		Points: cfg.Security.APIRateLimitPoints,
		Window: cfg.Security.APIRateLimitWindow.Duration,
		Block:  cfg.Security.APIRateLimitBlock.Duration,
	}, infra.Logger())

	authService := service.NewAuthService(repos.User, repos.SessionToken, signer, infra.Logger())
	userService := service.NewUserService(repos.User, mailer, infra.Logger(), cfg.Security.BCryptCost)
	bookService := service.NewBookService(repos.Book, infra.Logger())

	userHandler := handler.NewUserHandler(userService, authService, loginLimiter, infra.Logger())
	bookHandler := handler.NewBookHandler(bookService, infra.Logger(), cfg.Upload.MaxSizeMB)
	healthChecker := NewHealthChecker(infra)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("go-api-template"))
	router.Use(handler.RequestLogger(infra.Logger()))
	router.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.CORS.AllowedOrigins,
		AllowMethods:  cfg.CORS.AllowedMethods,
		AllowHeaders:  cfg.CORS.AllowedHeaders,
		ExposeHeaders: cfg.CORS.ExposedHeaders,
		MaxAge:        12 * time.Hour,
	}))

	setupRoutes(router, cfg, userHandler, bookHandler, authService, apiLimiter, healthChecker, infra)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:  infra,
		config: cfg,
		router: router,
		server: srv,
	}, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	userHandler *handler.UserHandler,
	bookHandler *handler.BookHandler,
	authService *service.AuthService,
	apiLimiter *service.APILimiter,
	healthChecker *HealthChecker,
	infra Infrastructure,
) {
	router.GET("/metrics", observability.PrometheusHandler(infra.MetricsHandler()))
	router.GET("/health", healthChecker.Handler)

	authRequired := handler.AuthMiddleware(authService, infra.Logger())

	api := router.Group("/api/v1")
	api.Use(handler.RateLimitMiddleware(apiLimiter, infra.Logger()))
	api.Use(handler.APIKeyMiddleware(cfg.Auth.APIKey, cfg.Auth.APIKeyAuthEnabled))
	{
		api.GET("/", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "API v1"})
		})

		user := api.Group("/user")
		{
			user.POST("/create", userHandler.Create)
			user.POST("/login", userHandler.Login)
			user.POST("/refreshToken", userHandler.RefreshToken)

			user.POST("/update", authRequired, userHandler.Update)
			user.POST("/delete", authRequired, userHandler.Delete)
			user.GET("/logout", authRequired, userHandler.Logout)
			user.GET("/get/:userId", authRequired, userHandler.GetByID)
			user.GET("/getall", authRequired, userHandler.GetAll)
		}

		book := api.Group("/book")
		book.Use(authRequired)
		{
			book.POST("/create", bookHandler.Create)
			book.POST("/update", bookHandler.Update)
			book.POST("/delete", bookHandler.Delete)
			book.GET("/get/:bookId", bookHandler.GetByID)
			book.GET("/getall", bookHandler.GetAll)
			book.GET("/listing", bookHandler.Listing)
			book.POST("/import", bookHandler.Import)
			book.GET("/export", bookHandler.Export)
		}
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
		)

		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		a.infra.Logger().Error("Shutdown error", zap.Error(err))
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	errs := make(chan error, 2)

	go func() {
		errs <- a.server.Shutdown(ctx)
	}()

	go func() {
		errs <- a.infra.Shutdown(ctx)
	}()

	err := errors.Join(<-errs, <-errs)
	if err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
