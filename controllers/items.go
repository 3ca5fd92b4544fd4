package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"peermarket/middleware"
	"peermarket/models"
	"peermarket/pkg/cache"
	"peermarket/pkg/config"
)

const itemsCacheKeyPrefix = "items-list"

// ListItems handles GET /items?q=&posted_by=&limit=. Public; newest first.
func ListItems(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := strings.TrimSpace(c.Query("q"))
		postedBy := strings.TrimSpace(c.Query("posted_by"))

		limit := 100
		if limStr := c.Query("limit"); limStr != "" {
			if parsed, err := strconv.Atoi(limStr); err == nil && parsed > 0 && parsed <= 500 {
				limit = parsed
			}
		}

		ck := cache.KeyFromStrings(itemsCacheKeyPrefix, q, postedBy, strconv.Itoa(limit))
		if v, ok := cache.Default().Get(ck); ok {
			if items, ok2 := v.([]models.Item); ok2 {
				c.JSON(http.StatusOK, itemsResponse(items))
				return
			}
		}

		query := db.Model(&models.Item{}).Order("created_at DESC").Limit(limit)
		if q != "" {
			p := "%" + strings.ToLower(q) + "%"
			query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", p, p)
		}
		if postedBy != "" {
			query = query.Where("posted_by = ?", postedBy)
		}

		var items []models.Item
		if err := query.Find(&items).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "db error"})
			return
		}

		cache.Default().Set(ck, items, time.Duration(config.ItemsCacheTTLSeconds)*time.Second)
		c.JSON(http.StatusOK, itemsResponse(items))
	}
}

// CreateItem handles POST /items (protected). PostedBy is always the
// authenticated user, never taken from the request body.
func CreateItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := middleware.CurrentUsername(c)

		var body struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			ImageURL    string `json:"imageUrl"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid request"})
			return
		}

		title := strings.TrimSpace(body.Title)
		description := strings.TrimSpace(body.Description)
		if title == "" || description == "" {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Title and description are required"})
			return
		}

		item := models.Item{
			Title:       title,
			Description: description,
			ImageURL:    strings.TrimSpace(body.ImageURL),
			PostedBy:    username,
		}
		if err := db.Create(&item).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to create item"})
			return
		}

		// listings changed; drop whatever cached pages are around
		cache.Default().DeletePrefix(itemsCacheKeyPrefix)

		c.JSON(http.StatusCreated, gin.H{"msg": "Item posted successfully", "id": item.ID})
	}
}

func itemsResponse(items []models.Item) []gin.H {
	out := make([]gin.H, 0, len(items))
	for _, it := range items {
		out = append(out, gin.H{
			"id":          it.ID,
			"title":       it.Title,
			"description": it.Description,
			"imageUrl":    it.ImageURL,
			"postedBy":    it.PostedBy,
			"createdAt":   it.CreatedAt,
		})
	}
	return out
}
