package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type chatReq struct {
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"session_id"`
}

// Chat runs one turn of the shopping assistant. A missing session_id starts
// a new session; the returned session_id should be sent on follow-up turns.
func (h *Handler) Chat(c *gin.Context) {
	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, 40001, "message is required")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		fail(c, http.StatusBadRequest, 40001, "message is required")
		return
	}

	res, err := h.Engine.Run(c.Request.Context(), req.Message, req.SessionID)
	if err != nil {
		fail(c, http.StatusInternalServerError, 50001, "failed to process message")
		return
	}

	ok(c, res)
}
