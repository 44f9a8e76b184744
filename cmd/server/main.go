// HTTP server: storefront gallery config, admin propagation routes, GraphQL
// and Prometheus metrics. Run with: go run ./cmd/server
package main

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gallery.GO/api"
	_ "gallery.GO/api/colorgallery"
	_ "gallery.GO/api/graphql"
	"gallery.GO/config"
	"gallery.GO/core/auth"
	"gallery.GO/core/logger"
)

func main() {
	config.LoadEnv()
	cfg := config.LoadAppConfig()
	log := logger.New(logger.Options{
		ServiceName: cfg.AppName,
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      cfg.LogFormat,
	})
	logger.SetDefault(log)
	ctx := context.Background()

	config.InitRedis()
	if config.RedisClient != nil {
		if err := config.RedisClient.Ping(config.RedisCtx()).Err(); err != nil {
			config.RedisClient = nil
			log.Warn(ctx, "redis configured but not reachable, gallery documents cached in process", err)
		} else {
			log.Info(ctx, "redis connection successful")
		}
	} else {
		log.Info(ctx, "redis not configured, gallery documents cached in process")
	}

	db, err := config.NewDB()
	if err != nil {
		log.Error(ctx, "failed to connect to DB", err)
		os.Exit(1)
	}
	sqldb, err := db.DB()
	if err == nil {
		err = sqldb.Ping()
	}
	if err != nil {
		log.Error(ctx, "database connection failed", err)
		os.Exit(1)
	}
	log.Info(ctx, "database connection successful")

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Gzip())
	e.Use(middleware.Decompress())
	e.Use(requestLog(log))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/health", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	apiGroup := e.Group("/api")
	apiGroup.Use(auth.Middleware(db, cfg))
	api.ApplyModules(apiGroup, db)
	api.ApplyRoutes(e, db)

	// ASCII banner on start (random font each run)
	fonts := []string{"banner", "big", "block", "slant", "standard", "small", "doom", "larry3d", "puffy"}
	figure.NewFigure("ColorGallery", fonts[rand.Intn(len(fonts))], true).Print()

	go func() {
		log.Info(log.WithField(ctx, "port", cfg.Port), "server running")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "server stopped", err)
			os.Exit(1)
		}
	}()

	stop, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	<-stop.Done()

	shutdown, done := context.WithTimeout(ctx, 10*time.Second)
	defer done()
	if err := e.Shutdown(shutdown); err != nil {
		log.Error(ctx, "graceful shutdown failed", err)
	}
}

// requestLog logs one line per request and sets X-Request-Duration-ms.
func requestLog(log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			c.Response().Before(func() {
				if c.Response().Header().Get("X-Request-Duration-ms") == "" {
					c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(time.Since(start).Milliseconds(), 10))
				}
			})
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			ctx := log.WithField(c.Request().Context(), "method", c.Request().Method)
			ctx = log.WithField(ctx, "path", c.Path())
			ctx = log.WithField(ctx, "status", c.Response().Status)
			ctx = log.WithField(ctx, "duration_ms", time.Since(start).Milliseconds())
			log.Info(ctx, "request")
			return nil
		}
	}
}
