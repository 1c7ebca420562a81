package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"ramana-bouquets/internal/domain"
	"ramana-bouquets/internal/service/catalog"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func listProductsHandler(svc catalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := parseCatalogQuery(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		page, err := svc.Search(c.Request.Context(), q)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

func getProductHandler(svc catalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := svc.Get(c.Request.Context(), domain.ProductID(c.Param("id")))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func listCategoriesHandler(svc catalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cats, err := svc.Categories(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": cats})
	}
}

func parseCatalogQuery(c *gin.Context) (catalog.Query, error) {
	q := catalog.Query{
		Category: c.Query("category"),
		Text:     c.Query("q"),
		Sort:     c.Query("sort"),
	}
	for _, p := range []struct {
		name string
		dst  **decimal.Decimal
	}{{"min_price", &q.MinPrice}, {"max_price", &q.MaxPrice}} {
		raw := strings.TrimSpace(c.Query(p.name))
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return q, errors.New("invalid " + p.name)
		}
		*p.dst = &d
	}
	for _, p := range []struct {
		name string
		dst  *int
	}{{"page", &q.Page}, {"page_size", &q.PageSize}} {
		raw := strings.TrimSpace(c.Query(p.name))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return q, errors.New("invalid " + p.name)
		}
		*p.dst = n
	}
	return q, nil
}
