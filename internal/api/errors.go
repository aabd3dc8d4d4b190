package api

import (
	"errors"
	"net/http"
	"strings"

	z "github.com/Oudwins/zog"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wartungsmanager-backend/internal/registry"
	"wartungsmanager-backend/internal/workflow"
)

const (
	codeInvalidRequest = "invalid_request"
	codeInvalidInput   = "invalid_input"
	codeDuplicate      = "duplicate"
	codeInternal       = "internal"
)

// statusFor maps a service error to an HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, registry.ErrDuplicate):
		return http.StatusConflict, codeDuplicate
	case errors.Is(err, registry.ErrInvalidInput):
		return http.StatusUnprocessableEntity, codeInvalidInput
	}

	kind := workflow.ErrorKind(err)
	switch {
	case errors.Is(err, workflow.ErrNotFound):
		return http.StatusNotFound, kind
	case errors.Is(err, workflow.ErrInvalidPressure), errors.Is(err, workflow.ErrInvalidPriority):
		return http.StatusUnprocessableEntity, kind
	case errors.Is(err, workflow.ErrDuplicateActiveEntry),
		errors.Is(err, workflow.ErrInvalidState),
		errors.Is(err, workflow.ErrCompressorNotActive),
		errors.Is(err, workflow.ErrSessionAlreadyActive),
		errors.Is(err, workflow.ErrBottleInactive):
		return http.StatusConflict, kind
	case errors.Is(err, workflow.ErrAuthenticationFailed):
		return http.StatusUnauthorized, kind
	}
	return http.StatusInternalServerError, codeInternal
}

// respondError writes err as {"error", "code"} plus the workflow context
// the UI needs to explain a rejected transition.
func (h *Handler) respondError(c *gin.Context, err error) {
	status, code := statusFor(err)
	body := gin.H{"error": err.Error(), "code": code}

	switch status {
	case http.StatusInternalServerError:
		h.log.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		body["error"] = "internal error"
	case http.StatusUnauthorized:
		body["error"] = workflow.ErrAuthenticationFailed.Error()
	default:
		var wfErr *workflow.Error
		if errors.As(err, &wfErr) {
			if wfErr.EntryID != 0 {
				body["entryId"] = wfErr.EntryID
			}
			if wfErr.BottleID != 0 {
				body["bottleId"] = wfErr.BottleID
			}
			if wfErr.Status != "" {
				body["status"] = wfErr.Status
			}
			if wfErr.Target != "" {
				body["target"] = wfErr.Target
			}
		}
	}

	_ = c.Error(err)
	c.JSON(status, body)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "code": codeInvalidRequest})
}

// respondIssues reports zog validation issues per field.
func respondIssues(c *gin.Context, issues map[string][]*z.ZogIssue) {
	fields := make(map[string][]string, len(issues))
	for field, list := range issues {
		if strings.HasPrefix(field, "$") {
			continue
		}
		for _, issue := range list {
			fields[field] = append(fields[field], issue.Message)
		}
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"error":  "invalid request",
		"code":   codeInvalidRequest,
		"fields": fields,
	})
}
