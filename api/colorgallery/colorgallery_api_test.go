package colorgallery

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "gallery.GO/core/errors"
	gallerySvc "gallery.GO/service/colorgallery"
	"gallery.GO/storefront/switcher"
)

type call struct {
	op      string
	product uint
	store   uint16
	value   string
	opts    gallerySvc.RunOptions
}

type fakeService struct {
	calls     []call
	configErr error
	failRun   bool
	flushed   int
}

func (f *fakeService) ConfigJSON(_ context.Context, productID uint, storeID uint16) ([]byte, error) {
	f.calls = append(f.calls, call{op: "config", product: productID, store: storeID})
	if f.configErr != nil {
		return nil, f.configErr
	}
	return []byte(`{"enabled":true,"colorAttributeId":93}`), nil
}

func (f *fakeService) ResolveColor(_ context.Context, productID uint, storeID uint16, value string) (switcher.Config, error) {
	f.calls = append(f.calls, call{op: "color", product: productID, store: storeID, value: value})
	id := 11
	return switcher.Config{Enabled: true, DefaultColorOptionID: &id}, nil
}

func (f *fakeService) report(op string, productID uint, opts gallerySvc.RunOptions) *gallerySvc.Report {
	f.calls = append(f.calls, call{op: op, product: productID, opts: opts})
	r := gallerySvc.NewReport(op, productID, opts.DryRun)
	r.Action("child 11: linked 2 media")
	if f.failRun {
		r.Error(errors.New("child 12: disk full"))
	}
	return r
}

func (f *fakeService) Propagate(_ context.Context, productID uint, opts gallerySvc.RunOptions) *gallerySvc.Report {
	return f.report("propagate", productID, opts)
}

func (f *fakeService) Clean(_ context.Context, productID uint, opts gallerySvc.RunOptions) *gallerySvc.Report {
	return f.report("clean", productID, opts)
}

func (f *fakeService) Migrate(_ context.Context, productID uint, opts gallerySvc.RunOptions) *gallerySvc.Report {
	return f.report("migrate", productID, opts)
}

func (f *fakeService) Diagnose(_ context.Context, productID uint, storeID uint16) (*gallerySvc.Diagnostics, error) {
	f.calls = append(f.calls, call{op: "diagnose", product: productID, store: storeID})
	return &gallerySvc.Diagnostics{ProductID: productID, StoreID: storeID, Enabled: true}, nil
}

func (f *fakeService) InvalidateCaches(context.Context) { f.flushed++ }

func newServer(svc GalleryService) *echo.Echo {
	e := echo.New()
	RegisterRoutes(e.Group("/api"), svc)
	RegisterPublicRoutes(e, svc)
	return e
}

func serve(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestConfigRoute(t *testing.T) {
	svc := &fakeService{}
	rec := serve(newServer(svc), http.MethodGet, "/api/colorgallery/products/7?store=2", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"enabled":true,"colorAttributeId":93}`, rec.Body.String())
	require.Len(t, svc.calls, 1)
	assert.Equal(t, call{op: "config", product: 7, store: 2}, svc.calls[0])
}

func TestConfigRoute_Validation(t *testing.T) {
	e := newServer(&fakeService{})

	for _, target := range []string{"/api/colorgallery/products/0", "/api/colorgallery/products/abc", "/api/colorgallery/products/1?store=x"} {
		rec := serve(e, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Contains(t, rec.Body.String(), string(apperrors.CodeValidation), target)
	}
}

func TestConfigRoute_DependencyError(t *testing.T) {
	svc := &fakeService{configErr: apperrors.Wrap(apperrors.CodeDependency, errors.New("db down"), "gallery lookup failed")}
	rec := serve(newServer(svc), http.MethodGet, "/api/colorgallery/products/7", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "DEPENDENCY_ERROR", body["code"])
	assert.NotContains(t, body["error"], "db down")
}

func TestColorRoute(t *testing.T) {
	svc := &fakeService{}
	rec := serve(newServer(svc), http.MethodGet, "/colorgallery/products/7/color/marr%C3%B3n?store=1", "")

	require.Equal(t, http.StatusOK, rec.Code)
	cfg, err := switcher.ParseConfig(rec.Body.Bytes())
	require.NoError(t, err)
	require.NotNil(t, cfg.DefaultColorOptionID)
	assert.Equal(t, 11, *cfg.DefaultColorOptionID)
	assert.Equal(t, "marrón", svc.calls[0].value)
	assert.Equal(t, uint(7), svc.calls[0].product)
	assert.Equal(t, uint16(1), svc.calls[0].store)
}

func TestColorRoute_BindsPathAndQuery(t *testing.T) {
	svc := &fakeService{}
	e := newServer(svc)

	rec := serve(e, http.MethodGet, "/colorgallery/products/7/color/10?store=3", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, call{op: "color", product: 7, store: 3, value: "10"}, svc.calls[0])

	rec = serve(e, http.MethodGet, "/colorgallery/products/0/color/10", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRunRoutes(t *testing.T) {
	svc := &fakeService{}
	e := newServer(svc)

	rec := serve(e, http.MethodPost, "/api/colorgallery/products/5/propagate", `{"dry_run":true,"clean_first":false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var report gallerySvc.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "propagate", report.Operation)
	assert.True(t, report.DryRun)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Duration-ms"))
	require.NotNil(t, svc.calls[0].opts.CleanFirst)
	assert.False(t, *svc.calls[0].opts.CleanFirst)

	rec = serve(e, http.MethodPost, "/api/colorgallery/products/5/clean", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, gallerySvc.RunOptions{}, svc.calls[1].opts)

	rec = serve(e, http.MethodPost, "/api/colorgallery/products/5/migrate", `{"dry_run":false}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "migrate", svc.calls[2].op)

	rec = serve(e, http.MethodPost, "/api/colorgallery/products/5/propagate", `{"dry_run":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRunRoutes_PartialFailureIsMultiStatus(t *testing.T) {
	rec := serve(newServer(&fakeService{failRun: true}), http.MethodPost, "/api/colorgallery/products/5/propagate", "")

	assert.Equal(t, http.StatusMultiStatus, rec.Code)
	var report gallerySvc.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, []string{"child 12: disk full"}, report.Errors)
}

func TestDiagnoseAndFlush(t *testing.T) {
	svc := &fakeService{}
	e := newServer(svc)

	rec := serve(e, http.MethodGet, "/api/colorgallery/products/9/diagnose?store=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"product_id":9`)

	rec = serve(e, http.MethodPost, "/api/colorgallery/cache/flush", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, svc.flushed)
}
