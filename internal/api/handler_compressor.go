package api

import (
	"net/http"
	"strings"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zhttp"
	"github.com/gin-gonic/gin"
)

// GetActiveSession handles GET /api/compressor/session. The session is null
// while the compressor is off.
func (h *Handler) GetActiveSession(c *gin.Context) {
	s, err := h.workflow.ActiveSession(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": s})
}

// ListSessions handles GET /api/compressor/sessions?limit=.
func (h *Handler) ListSessions(c *gin.Context) {
	limit, ok := intQuery(c, "limit")
	if !ok {
		return
	}
	sessions, err := h.workflow.ListSessions(c.Request.Context(), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

type startSessionRequest struct {
	Operator string `json:"operator" zog:"operator"`
}

var startSessionSchema = z.Struct(z.Shape{
	"operator": z.String().Required().Max(100),
})

// StartSession handles POST /api/compressor/start.
func (h *Handler) StartSession(c *gin.Context) {
	var req startSessionRequest
	if issues := startSessionSchema.Parse(zhttp.Request(c.Request), &req); issues != nil {
		respondIssues(c, issues)
		return
	}
	s, err := h.workflow.StartCompressorSession(c.Request.Context(), strings.TrimSpace(req.Operator))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

// StopSession handles POST /api/compressor/stop.
func (h *Handler) StopSession(c *gin.Context) {
	reason, ok := parseReason(c)
	if !ok {
		return
	}
	s, err := h.workflow.StopCompressorSession(c.Request.Context(), reason)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

type resetSessionRequest struct {
	Password string `json:"password" zog:"password"`
	Reason   string `json:"reason" zog:"reason"`
}

var resetSessionSchema = z.Struct(z.Shape{
	"password": z.String().Required().Max(256),
	"reason":   z.String().Max(500),
})

// ResetSession handles POST /api/compressor/reset. A missing or wrong
// password answers 401 regardless of the compressor state.
func (h *Handler) ResetSession(c *gin.Context) {
	var req resetSessionRequest
	if issues := resetSessionSchema.Parse(zhttp.Request(c.Request), &req); issues != nil {
		respondIssues(c, issues)
		return
	}
	result, err := h.workflow.ResetCompressorSession(c.Request.Context(), req.Password, strings.TrimSpace(req.Reason))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
