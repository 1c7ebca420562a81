package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"ramana-bouquets/internal/domain"
	"ramana-bouquets/internal/logging"
	"ramana-bouquets/internal/service/catalog"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Pinger reports backend reachability for /readyz.
type Pinger interface {
	Ping(ctx context.Context) error
}

type listRepo interface {
	Get(ctx context.Context, list domain.ListName, userID string) (*domain.RemoteListRecord, error)
	Upsert(ctx context.Context, list domain.ListName, userID string, items json.RawMessage) (*domain.RemoteListRecord, error)
}

type catalogService interface {
	Search(ctx context.Context, q catalog.Query) (catalog.Page, error)
	Get(ctx context.Context, id domain.ProductID) (*domain.Product, error)
	Categories(ctx context.Context) ([]domain.Category, error)
}

type tokenVerifier interface {
	UserID(token string) (string, error)
}

type Deps struct {
	DB       Pinger
	Lists    listRepo
	Catalog  catalogService
	Verifier tokenVerifier
	// AllowOrigins defaults to any origin.
	AllowOrigins []string
}

// buildRouter wires routes for the API.
func buildRouter(logger *logging.Logger, deps Deps) (*gin.Engine, error) {
	if deps.Lists == nil || deps.Verifier == nil {
		return nil, errors.New("httpserver: list repository and token verifier are required")
	}
	origins := deps.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodPut, http.MethodOptions},
		AllowHeaders: []string{"Authorization", "Content-Type"},
	}))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.DB))

	v1 := router.Group("/v1")
	if deps.Catalog != nil {
		v1.GET("/products", listProductsHandler(deps.Catalog))
		v1.GET("/products/:id", getProductHandler(deps.Catalog))
		v1.GET("/categories", listCategoriesHandler(deps.Catalog))
	}

	lists := v1.Group("/users/:userID/lists")
	lists.Use(bearerAuth(deps.Verifier), requireOwner())
	lists.GET("/:list", getListHandler(deps.Lists, logger))
	lists.PUT("/:list", putListHandler(deps.Lists, logger))

	return router, nil
}
