package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/buybuddy-ai/buybuddy/internal/config"
	"github.com/buybuddy-ai/buybuddy/internal/history"
	"github.com/buybuddy-ai/buybuddy/internal/search"
	"github.com/buybuddy-ai/buybuddy/internal/workflow"
)

type Handler struct {
	Cfg     config.Config
	Engine  *workflow.Engine
	Search  *search.Client
	History *history.Repo
}

func NewHandler(cfg config.Config, eng *workflow.Engine, searcher *search.Client, repo *history.Repo) *Handler {
	return &Handler{Cfg: cfg, Engine: eng, Search: searcher, History: repo}
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "ok",
		"data":    data,
	})
}

func fail(c *gin.Context, httpStatus int, code int, msg string) {
	c.JSON(httpStatus, gin.H{
		"code":    code,
		"message": msg,
		"data":    nil,
	})
}
