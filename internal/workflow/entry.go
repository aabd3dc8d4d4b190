package workflow

import "time"

// DefaultGasMixture is recorded when a fill is started without a mixture.
const DefaultGasMixture = "air"

// Entry is one bottle on the filling waiting list.
type Entry struct {
	ID                  int64      `json:"id"`
	BottleID            int64      `json:"bottleId"`
	IntakeDate          time.Time  `json:"intakeDate"`
	RequestedPressure   int        `json:"requestedPressure"`
	Priority            Priority   `json:"priority"`
	Notes               string     `json:"notes,omitempty"`
	Status              Status     `json:"status"`
	Operator            string     `json:"operator,omitempty"`
	GasMixture          string     `json:"gasMixture,omitempty"`
	FillStart           *time.Time `json:"fillStart,omitempty"`
	FillEnd             *time.Time `json:"fillEnd,omitempty"`
	AchievedPressure    *int       `json:"achievedPressure,omitempty"`
	CompressorSessionID *int64     `json:"compressorSessionId,omitempty"`
	CancelReason        string     `json:"cancelReason,omitempty"`
	CancelledAt         *time.Time `json:"cancelledAt,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// StartFilling moves a waiting entry to filling.
func (e *Entry) StartFilling(operator, gas string, sessionID int64, at time.Time) error {
	if !e.Status.CanTransitionTo(StatusFilling) {
		return ErrInvalidState
	}
	if gas == "" {
		gas = DefaultGasMixture
	}
	e.Status = StatusFilling
	e.Operator = operator
	e.GasMixture = gas
	e.FillStart = &at
	e.CompressorSessionID = &sessionID
	e.UpdatedAt = at
	return nil
}

// CompleteFilling moves a filling entry to filled.
func (e *Entry) CompleteFilling(achieved int, end time.Time) error {
	if !e.Status.CanTransitionTo(StatusFilled) {
		return ErrInvalidState
	}
	e.Status = StatusFilled
	e.AchievedPressure = &achieved
	e.FillEnd = &end
	e.UpdatedAt = end
	return nil
}

// Cancel moves a non-terminal entry to cancelled.
func (e *Entry) Cancel(reason string, at time.Time) error {
	if !e.Status.CanTransitionTo(StatusCancelled) {
		return ErrInvalidState
	}
	e.Status = StatusCancelled
	e.CancelReason = reason
	e.CancelledAt = &at
	e.UpdatedAt = at
	return nil
}

// FillDuration is the time between fill start and end, or zero when the
// fill has not finished.
func (e *Entry) FillDuration() time.Duration {
	if e.FillStart == nil || e.FillEnd == nil {
		return 0
	}
	return e.FillEnd.Sub(*e.FillStart)
}

// Bottle is the part of a registered bottle the workflow needs.
type Bottle struct {
	ID             int64  `json:"id"`
	InternalNumber string `json:"internalNumber"`
	Active         bool   `json:"active"`
}

// Session is one run of the compressor.
type Session struct {
	ID                     int64         `json:"id"`
	Operator               string        `json:"operator"`
	Status                 SessionStatus `json:"status"`
	StartedAt              time.Time     `json:"startedAt"`
	EndedAt                *time.Time    `json:"endedAt,omitempty"`
	ElapsedSeconds         int64         `json:"elapsedSeconds"`
	CloseReason            string        `json:"closeReason,omitempty"`
	Reset                  bool          `json:"reset"`
	PreviousElapsedSeconds int64         `json:"previousElapsedSeconds"`
	ResetReason            string        `json:"resetReason,omitempty"`
	ResetAt                *time.Time    `json:"resetAt,omitempty"`
}

// Close ends an active session, recording the elapsed runtime.
func (s *Session) Close(reason string, at time.Time, reset bool) error {
	if s.Status != SessionActive {
		return ErrCompressorNotActive
	}
	elapsed := int64(at.Sub(s.StartedAt) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	s.Status = SessionClosed
	s.EndedAt = &at
	s.ElapsedSeconds = elapsed
	s.CloseReason = reason
	s.Reset = reset
	return nil
}
