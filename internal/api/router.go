package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"risk-workers/internal/common/logger"
)

type RouterConfig struct {
	ServiceName       string
	AllowedOrigins    []string
	Logger            logger.Logger
	PredictionHandler *PredictionHandler
	HealthHandler     *HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(Recovery(cfg.Logger))
	r.Use(otelgin.Middleware(cfg.ServiceName))
	r.Use(CORS(cfg.AllowedOrigins))
	r.Use(RequestLogger(cfg.Logger))
	r.Use(Metrics())

	if cfg.HealthHandler != nil {
		r.GET("/health", cfg.HealthHandler.Health)
		r.GET("/ready", cfg.HealthHandler.Ready)
	}
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	if cfg.PredictionHandler != nil {
		api.POST("/predict", cfg.PredictionHandler.Predict)
		api.GET("/predictions", cfg.PredictionHandler.ListPredictions)
		api.POST("/predictions", cfg.PredictionHandler.SavePrediction)
	}

	return r
}
