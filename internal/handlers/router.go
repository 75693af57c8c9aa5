package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/hiring-board/internal/metrics"
	"github.com/justsurfingit/hiring-board/internal/ratelimit"
	"github.com/justsurfingit/hiring-board/internal/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps is everything the router wires into handlers.
type Deps struct {
	Jobs         *services.JobService
	Applications *services.ApplicationService
	Matching     *services.MatchingService
	LLM          services.Completer
	Hub          *services.NotificationHub
	Metrics      *metrics.Metrics
	Gatherer     prometheus.Gatherer
	Limiter      *ratelimit.Limiter
	AllowOrigins []string
	Log          *slog.Logger
}

func NewRouter(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	r := gin.Default()
	r.Use(requestID(d.Log))

	config := cors.DefaultConfig()
	if len(d.AllowOrigins) == 0 || (len(d.AllowOrigins) == 1 && d.AllowOrigins[0] == "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = d.AllowOrigins
	}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Last-Event-ID", requestIDHeader}
	config.ExposeHeaders = []string{requestIDHeader, "Retry-After"}
	config.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions}
	r.Use(cors.New(config))

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	jobHandler := NewJobHandler(d.LLM, d.Jobs)
	appHandler := NewApplicationHandler(d.Applications, d.Matching)
	notifyHandler := NewNotificationHandler(d.Hub)
	limited := ratelimit.Middleware(d.Limiter, d.Metrics.ObserveRateLimited)

	api := r.Group("/api/v1")
	{
		api.GET("/health", HealthCheck)

		api.POST("/jobs/extract", limited, jobHandler.ParseJob)
		api.POST("/jobs", limited, jobHandler.CreateJob)
		api.GET("/jobs/:jobId", jobHandler.GetJob)

		api.GET("/jobs/:jobId/applications", appHandler.List)
		api.POST("/jobs/:jobId/applications", limited, appHandler.Create)
		api.PUT("/jobs/:jobId/applications/kanban", limited, appHandler.UpdateKanban)

		api.POST("/applications/:applicationId/score", limited, appHandler.Score)
		api.GET("/applications/:applicationId/events", appHandler.Events)

		api.GET("/notifications/stream", notifyHandler.Stream)
	}
	return r
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
