package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apphealth "github.com/ManuelDev-we/CRM-condominio-sub002/internal/health"
)

// HTTP serves readiness over HTTP.
type HTTP struct {
	checker *apphealth.Checker
}

// NewHTTP returns a readiness handler over checker.
func NewHTTP(checker *apphealth.Checker) *HTTP {
	return &HTTP{checker: checker}
}

// Ready responds 200 with the report when every probe passes, 503 otherwise.
func (h *HTTP) Ready(c *gin.Context) {
	r := h.checker.Check(c.Request.Context())
	status := http.StatusOK
	if !r.Healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, r)
}
