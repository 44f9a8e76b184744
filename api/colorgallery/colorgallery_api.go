package colorgallery

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"gallery.GO/api"
	"gallery.GO/core/auth"
	"gallery.GO/core/logger"
	gallerySvc "gallery.GO/service/colorgallery"
	"gallery.GO/storefront/switcher"
)

// ResourcePropagate is the ACL resource guarding the write routes.
const ResourcePropagate = "Rollpix_ColorGallery::propagate"

// GalleryService is what the routes need from service/colorgallery.
type GalleryService interface {
	ConfigJSON(ctx context.Context, productID uint, storeID uint16) ([]byte, error)
	ResolveColor(ctx context.Context, productID uint, storeID uint16, value string) (switcher.Config, error)
	Propagate(ctx context.Context, productID uint, opts gallerySvc.RunOptions) *gallerySvc.Report
	Clean(ctx context.Context, productID uint, opts gallerySvc.RunOptions) *gallerySvc.Report
	Migrate(ctx context.Context, productID uint, opts gallerySvc.RunOptions) *gallerySvc.Report
	Diagnose(ctx context.Context, productID uint, storeID uint16) (*gallerySvc.Diagnostics, error)
	InvalidateCaches(ctx context.Context)
}

func init() {
	api.RegisterModule(func(g *echo.Group, db *gorm.DB) {
		if svc := service(db); svc != nil {
			RegisterRoutes(g, svc)
		}
	})
	api.RegisterRoute(func(e *echo.Echo, db *gorm.DB) {
		if svc := service(db); svc != nil {
			RegisterPublicRoutes(e, svc)
		}
	})
}

func service(db *gorm.DB) GalleryService {
	svc, err := gallerySvc.ForDB(db)
	if err != nil {
		logger.Default().Error(context.Background(), "colorgallery routes disabled", err)
		return nil
	}
	return svc
}

type handler struct {
	svc GalleryService
}

// RegisterRoutes mounts the /colorgallery routes on the authenticated /api group.
func RegisterRoutes(apiGroup *echo.Group, svc GalleryService) {
	h := &handler{svc: svc}
	g := apiGroup.Group("/colorgallery")
	write := auth.RequireResource(ResourcePropagate)

	// GET /api/colorgallery/products/:id?store=1 – storefront gallery config (public, see auth skipper)
	g.GET("/products/:id", h.config)
	g.GET("/products/:id/diagnose", h.diagnose)
	g.POST("/products/:id/propagate", h.run("propagate", svc.Propagate), write)
	g.POST("/products/:id/clean", h.run("clean", svc.Clean), write)
	g.POST("/products/:id/migrate", h.run("migrate", svc.Migrate), write)
	g.POST("/cache/flush", h.flush, write)
}

// RegisterPublicRoutes mounts the deep-link route on the root router.
func RegisterPublicRoutes(e *echo.Echo, svc GalleryService) {
	h := &handler{svc: svc}
	e.GET("/colorgallery/products/:id/color/:value", h.color)
}

func (h *handler) config(c echo.Context) error {
	var req productRequest
	if err := bindProduct(c, &req); err != nil {
		return fail(c, err)
	}
	doc, err := h.svc.ConfigJSON(c.Request().Context(), req.ProductID, req.StoreID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSONBlob(http.StatusOK, doc)
}

func (h *handler) color(c echo.Context) error {
	var req colorRequest
	if err := bindProduct(c, &req); err != nil {
		return fail(c, err)
	}
	if v, err := url.PathUnescape(req.Value); err == nil {
		req.Value = v
	}
	cfg, err := h.svc.ResolveColor(c.Request().Context(), req.ProductID, req.StoreID, req.Value)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, cfg)
}

func (h *handler) diagnose(c echo.Context) error {
	var req productRequest
	if err := bindProduct(c, &req); err != nil {
		return fail(c, err)
	}
	d, err := h.svc.Diagnose(c.Request().Context(), req.ProductID, req.StoreID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

type runFunc func(ctx context.Context, productID uint, opts gallerySvc.RunOptions) *gallerySvc.Report

func (h *handler) run(operation string, fn runFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		var req runRequest
		if err := bindRun(c, &req); err != nil {
			return fail(c, err)
		}
		ctx := logger.Default().WithField(c.Request().Context(), "operation", operation)
		report := fn(ctx, req.ProductID, gallerySvc.RunOptions{DryRun: req.DryRun, CleanFirst: req.CleanFirst})

		c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(time.Since(start).Milliseconds(), 10))
		status := http.StatusOK
		if report.HasErrors() {
			status = http.StatusMultiStatus
		}
		return c.JSON(status, report)
	}
}

func (h *handler) flush(c echo.Context) error {
	h.svc.InvalidateCaches(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}
