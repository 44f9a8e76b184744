package graphql

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/graph-gophers/graphql-go"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"gallery.GO/api"
	"gallery.GO/core/logger"
	graphqlpkg "gallery.GO/graphql"
	"gallery.GO/graphqlserver"
	"gallery.GO/service/colorgallery"
)

// maxBody bounds the request body read for store detection.
const maxBody = 1 << 20

func init() {
	api.RegisterRoute(RegisterGraphQLRoutes)
}

func RegisterGraphQLRoutes(e *echo.Echo, db *gorm.DB) {
	svc, err := colorgallery.ForDB(db)
	if err != nil {
		logger.Default().Error(context.Background(), "graphql routes disabled", err)
		return
	}
	schema, err := graphqlserver.NewSchema(svc)
	if err != nil {
		panic("graphql schema: " + err.Error())
	}
	RegisterGraphQLRoutesWithSchema(e, schema)
}

// RegisterGraphQLRoutesWithSchema registers /graphql with a custom schema (for tests with mocks).
func RegisterGraphQLRoutesWithSchema(e *echo.Echo, schema *graphql.Schema) {
	h := storeContextMiddleware(graphqlserver.Handler(schema))
	e.POST("/graphql", echo.WrapHandler(h))
	e.GET("/graphql", echo.WrapHandler(h))
	e.GET("/playground", echo.WrapHandler(playgroundHandler()))
}

// storeContextMiddleware puts the request's store (header, query, variables)
// on the context. Requests naming no store leave it unset.
func storeContextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Method == http.MethodPost && r.Body != nil {
			body, _ = io.ReadAll(io.LimitReader(r.Body, maxBody))
			r.Body = io.NopCloser(bytes.NewReader(body))
		}
		ctx := r.Context()
		if storeID, ok := graphqlpkg.GetStoreID(r, body); ok {
			ctx = graphqlpkg.WithStoreID(ctx, storeID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func playgroundHandler() http.Handler {
	html := `<!DOCTYPE html>
<html>
<head>
	<title>GraphQL Playground</title>
	<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/graphql-playground-react/build/static/css/index.css"/>
</head>
<body>
	<div id="root"/>
	<script src="https://cdn.jsdelivr.net/npm/graphql-playground-react/build/static/js/middleware.js"></script>
	<script>window.addEventListener('load', function() {
		GraphQLPlayground.init({ endpoint: '/graphql' });
	})</script>
</body>
</html>`
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(html))
	})
}
