package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"legispuls/models"
	"legispuls/repositories"
	"legispuls/services"
)

// ListConsultationsHandler godoc
// @Summary      List consultations
// @Description  List ingested consultation and pre-consultation projects
// @Tags         consultations
// @Param        type       query  string  false  "Entity type filter"
// @Param        page       query  int     false  "Page number (1-based)"
// @Param        page_size  query  int     false  "Page size (<=100)"
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /consultations [get]
func ListConsultationsHandler(repo *repositories.ConsultationRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

		var entityType models.EntityType
		if raw := c.Query("type"); raw != "" {
			parsed, err := models.ParseEntityType(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": services.KindValidation})
				return
			}
			entityType = parsed
		}

		items, total, err := repo.List(c.Request.Context(), entityType, page, pageSize)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "kind": services.KindBackend})
			return
		}
		if items == nil {
			items = []models.Consultation{}
		}
		c.JSON(http.StatusOK, gin.H{
			"items":     items,
			"total":     total,
			"page":      page,
			"page_size": pageSize,
		})
	}
}

// GetConsultationHandler godoc
// @Summary      Get one consultation
// @Tags         consultations
// @Param        id  path  string  true  "ObjectID"
// @Produce      json
// @Success      200  {object}  models.Consultation
// @Failure      404  {object}  map[string]string
// @Router       /consultations/{id} [get]
func GetConsultationHandler(repo *repositories.ConsultationRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		item, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found", "kind": services.KindNotFound})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "kind": services.KindBackend})
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// CommentBody is the wire shape of a new citizen comment.
type CommentBody struct {
	Author  string `json:"author"`
	Content string `json:"content"`
	Rating  *int   `json:"rating,omitempty"`
}

// AddCommentHandler godoc
// @Summary      Add a citizen comment
// @Tags         consultations
// @Accept       json
// @Param        id       path  string       true  "ObjectID"
// @Param        comment  body  CommentBody  true  "Comment"
// @Produce      json
// @Success      201  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /consultations/{id}/comments [post]
func AddCommentHandler(repo *repositories.ConsultationRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body CommentBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "kind": services.KindValidation})
			return
		}
		if strings.TrimSpace(body.Content) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "content is required", "kind": services.KindValidation})
			return
		}
		author := strings.TrimSpace(body.Author)
		if author == "" {
			author = "Anonim"
		}

		comment := models.Comment{
			Author:  author,
			Content: body.Content,
			Date:    time.Now(),
			Rating:  body.Rating,
		}
		if err := repo.AppendComment(c.Request.Context(), c.Param("id"), comment); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found", "kind": services.KindNotFound})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "kind": services.KindBackend})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"status": "created"})
	}
}
