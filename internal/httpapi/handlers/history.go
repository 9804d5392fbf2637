package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

func limitParam(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		return 0
	}
	return n
}

func (h *Handler) ListConversations(c *gin.Context) {
	sessionID := strings.TrimSpace(c.Query("session_id"))
	if sessionID == "" {
		fail(c, http.StatusBadRequest, 40003, "session_id is required")
		return
	}

	convs, err := h.History.ListConversations(c.Request.Context(), sessionID, limitParam(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, 50002, "failed to list conversations")
		return
	}

	ok(c, gin.H{"conversations": convs, "total": len(convs)})
}

func (h *Handler) ListSearches(c *gin.Context) {
	sessionID := strings.TrimSpace(c.Query("session_id"))

	searches, err := h.History.ListSearches(c.Request.Context(), sessionID, limitParam(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, 50003, "failed to list searches")
		return
	}

	ok(c, gin.H{"searches": searches, "total": len(searches)})
}

func (h *Handler) CachedProducts(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		fail(c, http.StatusBadRequest, 40004, "query is required")
		return
	}

	products, err := h.History.FindCachedProducts(c.Request.Context(), query, limitParam(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, 50004, "failed to load cached products")
		return
	}

	ok(c, gin.H{"products": products, "total": len(products)})
}
