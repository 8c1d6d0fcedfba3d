// Package handler exposes the security event log over HTTP for administrators.
package handler

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/audit/domain"
	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/audit/repository"
)

// HTTP lists recorded security events.
type HTTP struct {
	repo repository.Repository
}

// NewHTTP returns the handler. repo may be nil, in which case the listing is unavailable.
func NewHTTP(repo repository.Repository) *HTTP {
	return &HTTP{repo: repo}
}

type listResponse struct {
	Success bool                    `json:"success"`
	Message string                  `json:"message"`
	Data    []*domain.SecurityEvent `json:"data"`
}

type errorResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ErrorCode string `json:"error_code"`
}

// List handles GET /api/admin/security-events?subject_id=&type=&limit=&offset=.
func (h *HTTP) List(c *gin.Context) {
	if h.repo == nil {
		c.JSON(http.StatusNotImplemented, errorResponse{Message: "security event listing is not configured", ErrorCode: "INTERNAL"})
		return
	}
	f := repository.Filter{SubjectID: c.Query("subject_id")}
	if t := c.Query("type"); t != "" {
		et := domain.EventType(t)
		if !et.Valid() {
			c.JSON(http.StatusBadRequest, errorResponse{Message: "unknown event type: " + t, ErrorCode: "INVALID_INPUT"})
			return
		}
		f.Type = et
	}
	var ok bool
	if f.Limit, ok = intQuery(c, "limit"); !ok {
		return
	}
	if f.Offset, ok = intQuery(c, "offset"); !ok {
		return
	}

	events, err := h.repo.List(c.Request.Context(), f)
	if err != nil {
		log.Printf("audit: list events: %v", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Message: "internal error", ErrorCode: "INTERNAL"})
		return
	}
	if events == nil {
		events = []*domain.SecurityEvent{}
	}
	c.JSON(http.StatusOK, listResponse{Success: true, Message: "ok", Data: events})
}

// intQuery parses a non-negative integer query parameter. It writes a 400 and
// returns false when the value is malformed.
func intQuery(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Message: "invalid " + name, ErrorCode: "INVALID_INPUT"})
		return 0, false
	}
	return n, true
}
