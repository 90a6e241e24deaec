package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/Hasan197668/nis/api/swagger"
	"github.com/Hasan197668/nis/internal/handler"
	"github.com/Hasan197668/nis/internal/middleware"
	"github.com/Hasan197668/nis/internal/service"
	"github.com/Hasan197668/nis/pkg/config"
	"github.com/Hasan197668/nis/pkg/logger"
	corsmiddleware "github.com/Hasan197668/nis/pkg/middleware/cors"
	reqidmiddleware "github.com/Hasan197668/nis/pkg/middleware/requestid"
)

type handlers struct {
	calendar *handler.CalendarHandler
	tables   *handler.TableHandler
	sessions *handler.SessionHandler
	history  *handler.HistoryHandler
	reports  *handler.ReportHandler
	metrics  *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, metrics *service.MetricsService, h handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	r.GET("/metrics", h.metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.GET("/calendar", h.calendar.Calendar)

	api.GET("/timetables", h.tables.ListTimetables)
	api.PUT("/timetables", h.tables.ReplaceTimetables)
	api.POST("/timetables/import", h.tables.ImportTimetables)
	api.GET("/duties", h.tables.ListDuties)
	api.PUT("/duties", h.tables.ReplaceDuties)
	api.POST("/duties/import", h.tables.ImportDuties)
	api.GET("/baseline", h.tables.ListBaseline)
	api.PUT("/baseline", h.tables.ReplaceBaseline)

	sessions := api.Group("/sessions")
	sessions.POST("", h.sessions.Open)
	sessions.GET("/:id", h.sessions.Get)
	sessions.PUT("/:id/day", h.sessions.SetDay)
	sessions.PUT("/:id/week", h.sessions.SetWeek)
	sessions.POST("/:id/absences/toggle", h.sessions.ToggleAbsence)
	sessions.PUT("/:id/absences/reason", h.sessions.SetReason)
	sessions.POST("/:id/duty/toggle", h.sessions.ToggleDuty)
	sessions.POST("/:id/plan", h.sessions.Execute)
	sessions.PUT("/:id/plan/cells", h.sessions.SetCell)
	sessions.GET("/:id/plan/candidates", h.sessions.Candidates)
	sessions.POST("/:id/commit", h.sessions.Commit)
	sessions.GET("/:id/share-text", h.sessions.ShareText)
	sessions.POST("/:id/share", h.sessions.Share)
	sessions.GET("/:id/export", h.sessions.Export)

	api.GET("/history", h.history.List)
	api.DELETE("/history", h.history.Reset)
	api.GET("/stats/leaderboard", h.history.Leaderboard)

	api.GET("/reports/download", h.reports.Download)
	return r
}
