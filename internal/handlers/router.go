package handlers

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/justsurfingit/jobtracker/internal/auth"
	"github.com/justsurfingit/jobtracker/internal/logger"
)

type RouterOptions struct {
	AllowAllOrigins bool
	Origins         []string
}

func NewRouter(jobs *JobHandler, sessions *SessionHandler, resolver *auth.Resolver, log logrus.FieldLogger, opts RouterOptions) *gin.Engine {
	RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery(), logger.Middleware(log))

	config := cors.DefaultConfig()
	if opts.AllowAllOrigins {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = opts.Origins
		config.AllowCredentials = true
	}
	config.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	config.MaxAge = 12 * time.Hour
	r.Use(cors.New(config))

	api := r.Group("/api/v1")
	{
		api.GET("/health", HealthCheck)

		api.POST("/session/guest", sessions.StartGuest)
		api.DELETE("/session/guest", sessions.EndGuest)

		owned := api.Group("/jobs", resolver.Middleware())
		owned.GET("", jobs.ListJobs)
		owned.POST("", jobs.CreateJob)
		owned.GET("/stats", jobs.Stats)
		owned.POST("/extract", jobs.ParseJob)
		owned.GET("/:id", jobs.GetJob)
		owned.PATCH("/:id", jobs.UpdateJob)
		owned.DELETE("/:id", jobs.DeleteJob)
	}
	return r
}
