package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/buybuddy-ai/buybuddy/internal/common"
	"github.com/buybuddy-ai/buybuddy/internal/config"
	"github.com/buybuddy-ai/buybuddy/internal/history"
	"github.com/buybuddy-ai/buybuddy/internal/httpapi/handlers"
	"github.com/buybuddy-ai/buybuddy/internal/httpapi/middleware"
	"github.com/buybuddy-ai/buybuddy/internal/search"
	"github.com/buybuddy-ai/buybuddy/internal/workflow"
)

func NewRouter(cfg config.Config, eng *workflow.Engine, searcher *search.Client, repo *history.Repo) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.Use(middleware.RequestID())

	h := handlers.NewHandler(cfg, eng, searcher, repo)

	r.GET("/ping", h.Ping)
	r.GET("/health", h.Health)

	v1 := r.Group("/v1")
	v1.POST("/chat", h.Chat)
	v1.POST("/search", h.DirectSearch)
	v1.GET("/products/cached", h.CachedProducts)

	// History endpoints require a token when JWT_SECRET is configured.
	hist := v1.Group("/history")
	if cfg.JWTSecret != "" {
		hist.Use(middleware.AuthRequired(cfg.JWTSecret))
	}
	hist.GET("/conversations", h.ListConversations)
	hist.GET("/searches", h.ListSearches)

	return r
}
