package graphql

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gallery.GO/graphqlserver"
	"gallery.GO/service/colorgallery"
	"gallery.GO/storefront/switcher"
)

type storeRecorder struct {
	stores []uint16
}

func (s *storeRecorder) Config(_ context.Context, _ uint, storeID uint16) (switcher.Config, error) {
	s.stores = append(s.stores, storeID)
	return switcher.Config{Enabled: true}, nil
}

func (s *storeRecorder) Diagnose(context.Context, uint, uint16) (*colorgallery.Diagnostics, error) {
	return &colorgallery.Diagnostics{}, nil
}

func TestGraphQLRoute_StoreFromRequest(t *testing.T) {
	svc := &storeRecorder{}
	schema, err := graphqlserver.NewSchema(svc)
	require.NoError(t, err)
	e := echo.New()
	RegisterGraphQLRoutesWithSchema(e, schema)

	post := func(target, body, header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		if header != "" {
			req.Header.Set("Store", header)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	query := `{"query":"{ colorGallery(productId: 1) { enabled } }"}`
	rec := post("/graphql", query, "2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"enabled":true`)

	post("/graphql?__Store=3", query, "")
	post("/graphql", query, "")

	assert.Equal(t, []uint16{2, 3, 0}, svc.stores)
}

func TestPlayground(t *testing.T) {
	e := echo.New()
	schema, err := graphqlserver.NewSchema(&storeRecorder{})
	require.NoError(t, err)
	RegisterGraphQLRoutesWithSchema(e, schema)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/playground", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "GraphQLPlayground")
}
