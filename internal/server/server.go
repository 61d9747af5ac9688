package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"example.com/household-budget/backend/internal/config"
	"example.com/household-budget/backend/internal/handlers"
	"example.com/household-budget/backend/internal/ledger"
	"example.com/household-budget/backend/internal/notifications"
	"example.com/household-budget/backend/internal/repository"
)

// New собирает HTTP-сервер Echo с роутами и зависимостями.
func New(cfg config.Config, logger *slog.Logger, db *pgxpool.Pool) *echo.Echo {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))

	incomeRepo := repository.NewIncomeRepository(db)
	costRepo := repository.NewCostRepository(db)
	obligationRepo := repository.NewObligationRepository(db)
	cycleRepo := repository.NewCycleRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	holidayRepo := repository.NewHolidayRepository(db)
	notificationHub := notifications.NewHub()
	ledgerService := ledger.NewService(progressRepo, cycleRepo, cfg.Engine.UndoHistoryLimit)

	cycleHandler := handlers.NewCycleHandler(incomeRepo, costRepo, obligationRepo, cycleRepo, progressRepo, holidayRepo, ledgerService, notificationHub)
	progressHandler := handlers.NewProgressHandler(ledgerService, notificationHub)
	incomeHandler := handlers.NewIncomeHandler(incomeRepo, notificationHub)
	costHandler := handlers.NewCostHandler(costRepo, notificationHub)
	obligationHandler := handlers.NewObligationHandler(obligationRepo)
	exportHandler := handlers.NewExportHandler(cycleHandler)
	notificationHandler := handlers.NewNotificationHandler(notificationHub)

	registerRoutes(
		e,
		cycleHandler,
		progressHandler,
		incomeHandler,
		costHandler,
		obligationHandler,
		exportHandler,
		notificationHandler,
		apiRateLimiter(cfg.Engine),
	)

	return e
}

// NewHTTPServer создает net/http сервер с заданными таймаутами.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote_ip", v.RemoteIP),
				slog.Duration("latency", v.Latency),
			}

			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}

			msg := "request completed"
			if v.Status >= http.StatusInternalServerError {
				logger.LogAttrs(c.Request().Context(), slog.LevelError, msg, attrs...)
				return nil
			}

			logger.LogAttrs(c.Request().Context(), slog.LevelInfo, msg, attrs...)
			return nil
		},
	})
}

func apiRateLimiter(cfg config.EngineConfig) echo.MiddlewareFunc {
	limit := rate.Limit(float64(cfg.RateLimitPerMinute) / 60.0)
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      limit,
		Burst:     cfg.RateLimitBurst,
		ExpiresIn: time.Minute,
	})

	return middleware.RateLimiter(store)
}
