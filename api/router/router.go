package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "legispuls/docs"

	"legispuls/api/handlers"
	"legispuls/api/middleware"
	"legispuls/repositories"
	"legispuls/services"
)

// Deps carries the constructed collaborators of the HTTP API. Everything is
// injected so tests can run the router against fakes.
type Deps struct {
	Summary       *services.SummaryService
	Comments      *services.CommentsService
	Acts          *services.ActService
	Consultations *repositories.ConsultationRepository
	// HealthPing reports whether the persistence layer is reachable.
	HealthPing func(ctx context.Context) error
}

func New(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogging())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		if deps.HealthPing != nil {
			if err := deps.HealthPing(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "mongo": "down", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// v1 routes
	api := r.Group("/api/v1")
	{
		ai := api.Group("/ai")
		{
			ai.POST("/summary", handlers.GenerateSummaryHandler(deps.Summary))
			ai.GET("/summary/:type/:id", handlers.GetSummaryHandler(deps.Summary))
			ai.POST("/comments-analysis", handlers.AnalyzeCommentsHandler(deps.Comments))
		}

		api.GET("/acts", handlers.ListActsHandler(deps.Acts))
		api.GET("/acts/:publisher/:year/:pos", handlers.GetActHandler(deps.Acts))

		api.GET("/consultations", handlers.ListConsultationsHandler(deps.Consultations))
		api.GET("/consultations/:id", handlers.GetConsultationHandler(deps.Consultations))
		api.POST("/consultations/:id/comments", handlers.AddCommentHandler(deps.Consultations))
	}

	return r
}
