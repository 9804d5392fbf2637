package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type searchReq struct {
	Query    string `json:"query" binding:"required"`
	Location string `json:"location"`
	Count    int    `json:"count"`
}

// DirectSearch queries the product source without running the assistant
// workflow. No session bookkeeping happens here.
func (h *Handler) DirectSearch(c *gin.Context) {
	var req searchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, 40002, "query is required")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		fail(c, http.StatusBadRequest, 40002, "query is required")
		return
	}
	count := req.Count
	if count <= 0 || count > 20 {
		count = 20
	}

	products, err := h.Search.Search(c.Request.Context(), req.Query, req.Location, count)
	if err != nil {
		fail(c, http.StatusBadGateway, 50201, "product search failed")
		return
	}

	ok(c, gin.H{
		"query":    req.Query,
		"products": products,
		"total":    len(products),
	})
}
