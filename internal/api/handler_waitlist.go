package api

import (
	"net/http"
	"strings"
	"time"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zhttp"
	"github.com/gin-gonic/gin"

	"wartungsmanager-backend/internal/workflow"
)

type acceptRequest struct {
	BottleID          int       `json:"bottleId" zog:"bottleId"`
	RequestedPressure *int      `json:"requestedPressure" zog:"requestedPressure"`
	Priority          string    `json:"priority" zog:"priority"`
	Notes             string    `json:"notes" zog:"notes"`
	IntakeDate        time.Time `json:"intakeDate" zog:"intakeDate"`
}

var acceptSchema = z.Struct(z.Shape{
	"bottleID":          z.Int().Required().GT(0),
	"requestedPressure": z.Ptr(z.Int()).NotNil(),
	"priority":          z.String(),
	"notes":             z.String().Max(2000),
	"intakeDate":        z.Time(),
})

// AcceptBottle handles POST /api/waitlist.
func (h *Handler) AcceptBottle(c *gin.Context) {
	var req acceptRequest
	if issues := acceptSchema.Parse(zhttp.Request(c.Request), &req); issues != nil {
		respondIssues(c, issues)
		return
	}

	priority, err := workflow.ParsePriority(req.Priority)
	if err != nil {
		h.respondError(c, err)
		return
	}

	entry, err := h.workflow.AcceptBottle(c.Request.Context(), workflow.AcceptParams{
		BottleID:          int64(req.BottleID),
		RequestedPressure: *req.RequestedPressure,
		Priority:          priority,
		Notes:             req.Notes,
		IntakeDate:        req.IntakeDate,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// ListEntries handles GET /api/waitlist?status=waiting,filling&bottleId=&limit=.
func (h *Handler) ListEntries(c *gin.Context) {
	var filter workflow.EntryFilter
	for _, raw := range strings.Split(c.Query("status"), ",") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		s, err := workflow.ParseStatus(raw)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		filter.Statuses = append(filter.Statuses, s)
	}
	bottleID, ok := intQuery(c, "bottleId")
	if !ok {
		return
	}
	limit, ok := intQuery(c, "limit")
	if !ok {
		return
	}
	filter.BottleID = int64(bottleID)
	filter.Limit = limit

	entries, err := h.workflow.ListEntries(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if entries == nil {
		entries = []workflow.Entry{}
	}
	c.JSON(http.StatusOK, entries)
}

// GetEntry handles GET /api/waitlist/:id.
func (h *Handler) GetEntry(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	entry, err := h.workflow.GetEntry(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

type startFillingRequest struct {
	Operator   string `json:"operator" zog:"operator"`
	GasMixture string `json:"gasMixture" zog:"gasMixture"`
}

var startFillingSchema = z.Struct(z.Shape{
	"operator":   z.String().Required().Max(100),
	"gasMixture": z.String().Max(50),
})

// StartFilling handles POST /api/waitlist/:id/start.
func (h *Handler) StartFilling(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req startFillingRequest
	if issues := startFillingSchema.Parse(zhttp.Request(c.Request), &req); issues != nil {
		respondIssues(c, issues)
		return
	}

	entry, err := h.workflow.StartFilling(c.Request.Context(), id, strings.TrimSpace(req.Operator), strings.TrimSpace(req.GasMixture))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

type completeFillingRequest struct {
	AchievedPressure *int      `json:"achievedPressure" zog:"achievedPressure"`
	FillEnd          time.Time `json:"fillEnd" zog:"fillEnd"`
}

var completeFillingSchema = z.Struct(z.Shape{
	"achievedPressure": z.Ptr(z.Int()).NotNil(),
	"fillEnd":          z.Time(),
})

// CompleteFilling handles POST /api/waitlist/:id/complete.
func (h *Handler) CompleteFilling(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req completeFillingRequest
	if issues := completeFillingSchema.Parse(zhttp.Request(c.Request), &req); issues != nil {
		respondIssues(c, issues)
		return
	}

	entry, err := h.workflow.CompleteFilling(c.Request.Context(), id, *req.AchievedPressure, req.FillEnd)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

type reasonRequest struct {
	Reason string `json:"reason" zog:"reason"`
}

var reasonSchema = z.Struct(z.Shape{
	"reason": z.String().Max(500),
})

// parseReason reads an optional {"reason"} body.
func parseReason(c *gin.Context) (string, bool) {
	var req reasonRequest
	if !hasBody(c) {
		return "", true
	}
	if issues := reasonSchema.Parse(zhttp.Request(c.Request), &req); issues != nil {
		respondIssues(c, issues)
		return "", false
	}
	return strings.TrimSpace(req.Reason), true
}

// CancelEntry handles POST /api/waitlist/:id/cancel.
func (h *Handler) CancelEntry(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	reason, ok := parseReason(c)
	if !ok {
		return
	}

	entry, err := h.workflow.CancelEntry(c.Request.Context(), id, reason)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}
