package store

import (
	"wartungsmanager-backend/internal/model"
	"wartungsmanager-backend/internal/workflow"
)

func toEntry(r model.WaitlistEntry) workflow.Entry {
	return workflow.Entry{
		ID:                  r.ID,
		BottleID:            r.BottleID,
		IntakeDate:          r.IntakeDate,
		RequestedPressure:   r.RequestedPressure,
		Priority:            workflow.Priority(r.Priority),
		Notes:               r.Notes,
		Status:              workflow.Status(r.Status),
		Operator:            r.Operator,
		GasMixture:          r.GasMixture,
		FillStart:           r.FillStart,
		FillEnd:             r.FillEnd,
		AchievedPressure:    r.AchievedPressure,
		CompressorSessionID: r.CompressorSessionID,
		CancelReason:        r.CancelReason,
		CancelledAt:         r.CancelledAt,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

func fromEntry(e *workflow.Entry) model.WaitlistEntry {
	return model.WaitlistEntry{
		ID:                  e.ID,
		BottleID:            e.BottleID,
		IntakeDate:          e.IntakeDate.UTC(),
		RequestedPressure:   e.RequestedPressure,
		Priority:            string(e.Priority),
		Notes:               e.Notes,
		Status:              string(e.Status),
		Operator:            e.Operator,
		GasMixture:          e.GasMixture,
		FillStart:           e.FillStart,
		FillEnd:             e.FillEnd,
		AchievedPressure:    e.AchievedPressure,
		CompressorSessionID: e.CompressorSessionID,
		CancelReason:        e.CancelReason,
		CancelledAt:         e.CancelledAt,
		CreatedAt:           e.CreatedAt,
		UpdatedAt:           e.UpdatedAt,
	}
}

// entryChanges lists the columns a transition may modify.
func entryChanges(e *workflow.Entry) map[string]any {
	return map[string]any{
		"status":                string(e.Status),
		"operator":              e.Operator,
		"gas_mixture":           e.GasMixture,
		"fill_start":            e.FillStart,
		"fill_end":              e.FillEnd,
		"achieved_pressure":     e.AchievedPressure,
		"compressor_session_id": e.CompressorSessionID,
		"cancel_reason":         e.CancelReason,
		"cancelled_at":          e.CancelledAt,
		"updated_at":            e.UpdatedAt,
	}
}

func toSession(r model.CompressorSession) workflow.Session {
	return workflow.Session{
		ID:                     r.ID,
		Operator:               r.Operator,
		Status:                 workflow.SessionStatus(r.Status),
		StartedAt:              r.StartedAt,
		EndedAt:                r.EndedAt,
		ElapsedSeconds:         r.ElapsedSeconds,
		CloseReason:            r.CloseReason,
		Reset:                  r.Reset,
		PreviousElapsedSeconds: r.PreviousElapsedSeconds,
		ResetReason:            r.ResetReason,
		ResetAt:                r.ResetAt,
	}
}

func fromSession(s *workflow.Session) model.CompressorSession {
	return model.CompressorSession{
		ID:                     s.ID,
		Operator:               s.Operator,
		Status:                 string(s.Status),
		StartedAt:              s.StartedAt.UTC(),
		EndedAt:                s.EndedAt,
		ElapsedSeconds:         s.ElapsedSeconds,
		CloseReason:            s.CloseReason,
		Reset:                  s.Reset,
		PreviousElapsedSeconds: s.PreviousElapsedSeconds,
		ResetReason:            s.ResetReason,
		ResetAt:                s.ResetAt,
		CreatedAt:              s.StartedAt,
		UpdatedAt:              s.StartedAt,
	}
}

func toBottle(r model.Bottle) workflow.Bottle {
	return workflow.Bottle{ID: r.ID, InternalNumber: r.InternalNumber, Active: r.Active}
}

func statusStrings(statuses []workflow.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
