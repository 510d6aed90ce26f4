package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"legispuls/models"
	"legispuls/services"
	"legispuls/summarizer"
)

// SummaryRequestBody is the wire shape of a summary request.
type SummaryRequestBody struct {
	Type            string   `json:"type"`
	EntityID        string   `json:"entityId"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Content         string   `json:"content"`
	Comments        []string `json:"comments"`
	ForceRegenerate bool     `json:"forceRegenerate"`
}

// GenerateSummaryHandler godoc
// @Summary      Generate or fetch an AI summary
// @Description  Returns the cached summary for (type, entityId) or generates a fresh one
// @Tags         ai
// @Accept       json
// @Param        request  body  SummaryRequestBody  true  "Summary request"
// @Produce      json
// @Success      200  {object}  services.SummaryResult
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /ai/summary [post]
func GenerateSummaryHandler(svc *services.SummaryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body SummaryRequestBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "kind": services.KindValidation})
			return
		}
		if body.Type == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "type is required", "kind": services.KindValidation})
			return
		}
		entityType, err := models.ParseEntityType(body.Type)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": services.KindValidation})
			return
		}

		result, err := svc.GetOrGenerate(c.Request.Context(), summarizer.SummaryRequest{
			EntityType:      entityType,
			EntityID:        body.EntityID,
			Title:           body.Title,
			Description:     body.Description,
			Content:         body.Content,
			Comments:        body.Comments,
			ForceRegenerate: body.ForceRegenerate,
		})
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// GetSummaryHandler godoc
// @Summary      Get a stored AI summary
// @Description  Returns the cached summary for (type, id) without invoking the model
// @Tags         ai
// @Param        type  path  string  true  "Entity type"
// @Param        id    path  string  true  "Entity id"
// @Produce      json
// @Success      200  {object}  models.AISummary
// @Failure      404  {object}  map[string]string
// @Router       /ai/summary/{type}/{id} [get]
func GetSummaryHandler(svc *services.SummaryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		entityType, err := models.ParseEntityType(c.Param("type"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": services.KindValidation})
			return
		}

		stored, err := svc.Lookup(c.Request.Context(), entityType, c.Param("id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, stored)
	}
}

// CommentsRequestBody is the wire shape of a comment-analysis request.
type CommentsRequestBody struct {
	Type            string   `json:"type"`
	EntityID        string   `json:"entityId"`
	Title           string   `json:"title"`
	Comments        []string `json:"comments"`
	ForceRegenerate bool     `json:"forceRegenerate"`
}

// AnalyzeCommentsHandler godoc
// @Summary      Analyze citizen comments
// @Description  Returns the cached comment analysis for (type, entityId) or runs a fresh one
// @Tags         ai
// @Accept       json
// @Param        request  body  CommentsRequestBody  true  "Analysis request"
// @Produce      json
// @Success      200  {object}  services.CommentsResult
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /ai/comments-analysis [post]
func AnalyzeCommentsHandler(svc *services.CommentsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body CommentsRequestBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "kind": services.KindValidation})
			return
		}
		if body.Type == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "type is required", "kind": services.KindValidation})
			return
		}
		entityType, err := models.ParseEntityType(body.Type)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": services.KindValidation})
			return
		}

		result, err := svc.GetOrAnalyze(c.Request.Context(), summarizer.CommentsRequest{
			EntityType:      entityType,
			EntityID:        body.EntityID,
			Title:           body.Title,
			Comments:        body.Comments,
			ForceRegenerate: body.ForceRegenerate,
		})
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
