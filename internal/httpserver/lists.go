package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"ramana-bouquets/internal/domain"
	"ramana-bouquets/internal/logging"

	"github.com/gin-gonic/gin"
)

type putListRequest struct {
	Items json.RawMessage `json:"items"`
}

func getListHandler(repo listRepo, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := domain.ParseListName(c.Param("list"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown list"})
			return
		}
		userID := c.Param("userID")
		rec, err := repo.Get(c.Request.Context(), list, userID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			logger.Errorf("lists: get list=%s user_id=%s error=%v", list, userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}

func putListHandler(repo listRepo, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := domain.ParseListName(c.Param("list"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown list"})
			return
		}
		var req putListRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
		var items []json.RawMessage
		if len(req.Items) > 0 {
			if err := json.Unmarshal(req.Items, &items); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "items must be an array"})
				return
			}
		}
		if items == nil {
			items = []json.RawMessage{}
		}
		raw, err := json.Marshal(items)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid items"})
			return
		}

		userID := c.Param("userID")
		rec, err := repo.Upsert(c.Request.Context(), list, userID, raw)
		if err != nil {
			logger.Errorf("lists: upsert list=%s user_id=%s error=%v", list, userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}
