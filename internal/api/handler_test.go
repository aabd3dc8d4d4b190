package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"wartungsmanager-backend/config"
	"wartungsmanager-backend/internal/api/mocks"
	"wartungsmanager-backend/internal/dbtest"
	"wartungsmanager-backend/internal/logging"
	"wartungsmanager-backend/internal/metrics"
	"wartungsmanager-backend/internal/model"
	"wartungsmanager-backend/internal/registry"
	"wartungsmanager-backend/internal/workflow"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logging.SetNop()
	os.Exit(m.Run())
}

func testServerConfig() config.ServerConfig {
	return config.ServerConfig{
		RateLimitPerSec:  1000,
		RateLimitBurst:   1000,
		ResetLimitPerMin: 6,
		ResetLimitBurst:  3,
	}
}

type fixture struct {
	router   *gin.Engine
	workflow *mocks.MockWorkflow
	registry *mocks.MockRegistry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		workflow: mocks.NewMockWorkflow(ctrl),
		registry: mocks.NewMockRegistry(ctrl),
	}
	f.router = NewRouter(Deps{
		Workflow: f.workflow,
		Registry: f.registry,
		Server:   testServerConfig(),
	})
	return f
}

func doJSON(t *testing.T, r http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestAcceptBottle(t *testing.T) {
	f := newFixture(t)
	intake := time.Date(2026, 4, 1, 8, 30, 0, 0, time.UTC)

	f.workflow.EXPECT().
		AcceptBottle(gomock.Any(), workflow.AcceptParams{BottleID: 42, RequestedPressure: 220, Priority: workflow.PriorityHigh, Notes: "Ventil prüfen", IntakeDate: intake}).
		Return(&workflow.Entry{ID: 1, BottleID: 42, RequestedPressure: 220, Priority: workflow.PriorityHigh, Status: workflow.StatusWaiting}, nil)

	w := doJSON(t, f.router, http.MethodPost, "/api/waitlist", map[string]any{
		"bottleId":          42,
		"requestedPressure": 220,
		"priority":          "high",
		"notes":             "Ventil prüfen",
		"intakeDate":        intake.Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "waiting", body["status"])
	assert.EqualValues(t, 42, body["bottleId"])
}

func TestAcceptBottleValidation(t *testing.T) {
	f := newFixture(t)

	w := doJSON(t, f.router, http.MethodPost, "/api/waitlist", map[string]any{"requestedPressure": 200})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, codeInvalidRequest, decode(t, w)["code"])

	w = doJSON(t, f.router, http.MethodPost, "/api/waitlist", map[string]any{"bottleId": 42})
	assert.Equal(t, http.StatusBadRequest, w.Code, "the pressure must be given explicitly")

	w = doJSON(t, f.router, http.MethodPost, "/api/waitlist", map[string]any{"bottleId": 42, "requestedPressure": 200, "priority": "urgent"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "invalid_priority", decode(t, w)["code"])

	f.workflow.EXPECT().
		AcceptBottle(gomock.Any(), workflow.AcceptParams{BottleID: 7, RequestedPressure: 350, Priority: workflow.PriorityNormal}).
		Return(nil, &workflow.Error{Op: "accept_bottle", BottleID: 7, Err: workflow.ErrInvalidPressure})
	w = doJSON(t, f.router, http.MethodPost, "/api/waitlist", map[string]any{"bottleId": 7, "requestedPressure": 350})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode(t, w)
	assert.Equal(t, "invalid_pressure", body["code"])
	assert.EqualValues(t, 7, body["bottleId"])
}

func TestStartFillingErrorMapping(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"Compressor off", &workflow.Error{Op: "start_filling", EntryID: 3, Status: workflow.StatusWaiting, Err: workflow.ErrCompressorNotActive}, http.StatusConflict, "compressor_not_active"},
		{"Already filling", &workflow.Error{Op: "start_filling", EntryID: 3, Status: workflow.StatusFilling, Target: workflow.StatusFilling, Err: workflow.ErrInvalidState}, http.StatusConflict, "invalid_state"},
		{"Unknown entry", &workflow.Error{Op: "start_filling", EntryID: 3, Err: workflow.ErrNotFound}, http.StatusNotFound, "not_found"},
		{"Database down", fmt.Errorf("start_filling: %w", errors.New("connection refused")), http.StatusInternalServerError, codeInternal},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.workflow.EXPECT().StartFilling(gomock.Any(), int64(3), "Anna", "nitrox32").Return(nil, tc.err)

			w := doJSON(t, f.router, http.MethodPost, "/api/waitlist/3/start", map[string]any{"operator": " Anna ", "gasMixture": "nitrox32"})
			assert.Equal(t, tc.status, w.Code)
			body := decode(t, w)
			assert.Equal(t, tc.code, body["code"])
			if tc.status == http.StatusInternalServerError {
				assert.Equal(t, "internal error", body["error"])
			}
			if tc.code == "invalid_state" {
				assert.Equal(t, "filling", body["status"])
				assert.Equal(t, "filling", body["target"])
				assert.EqualValues(t, 3, body["entryId"])
			}
		})
	}
}

func TestWaitlistTransitions(t *testing.T) {
	f := newFixture(t)
	end := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	achieved := 210

	f.workflow.EXPECT().CompleteFilling(gomock.Any(), int64(5), 210, end).
		Return(&workflow.Entry{ID: 5, Status: workflow.StatusFilled, AchievedPressure: &achieved}, nil)
	w := doJSON(t, f.router, http.MethodPost, "/api/waitlist/5/complete", map[string]any{"achievedPressure": 210, "fillEnd": end.Format(time.RFC3339)})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 210, decode(t, w)["achievedPressure"])

	f.workflow.EXPECT().CancelEntry(gomock.Any(), int64(6), "").
		Return(&workflow.Entry{ID: 6, Status: workflow.StatusCancelled}, nil)
	w = doJSON(t, f.router, http.MethodPost, "/api/waitlist/6/cancel", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	f.workflow.EXPECT().CancelEntry(gomock.Any(), int64(7), "Kunde hat abgeholt").
		Return(&workflow.Entry{ID: 7, Status: workflow.StatusCancelled, CancelReason: "Kunde hat abgeholt"}, nil)
	w = doJSON(t, f.router, http.MethodPost, "/api/waitlist/7/cancel", map[string]any{"reason": "Kunde hat abgeholt"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "cancelled", decode(t, w)["status"])

	w = doJSON(t, f.router, http.MethodPost, "/api/waitlist/abc/cancel", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = doJSON(t, f.router, http.MethodPost, "/api/waitlist/5/start", map[string]any{"gasMixture": "air"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "operator is required")
}

func TestListEntries(t *testing.T) {
	f := newFixture(t)

	f.workflow.EXPECT().
		ListEntries(gomock.Any(), workflow.EntryFilter{Statuses: []workflow.Status{workflow.StatusWaiting, workflow.StatusFilling}, BottleID: 42, Limit: 5}).
		Return([]workflow.Entry{{ID: 1, Status: workflow.StatusWaiting}}, nil)
	w := doJSON(t, f.router, http.MethodGet, "/api/waitlist?status=waiting,filling&bottleId=42&limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	f.workflow.EXPECT().ListEntries(gomock.Any(), workflow.EntryFilter{}).Return(nil, nil)
	w = doJSON(t, f.router, http.MethodGet, "/api/waitlist", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = doJSON(t, f.router, http.MethodGet, "/api/waitlist?status=done", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = doJSON(t, f.router, http.MethodGet, "/api/waitlist?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCompressorEndpoints(t *testing.T) {
	f := newFixture(t)
	started := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

	f.workflow.EXPECT().ActiveSession(gomock.Any()).Return(nil, nil)
	w := doJSON(t, f.router, http.MethodGet, "/api/compressor/session", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"session":null}`, w.Body.String())

	f.workflow.EXPECT().StartCompressorSession(gomock.Any(), "Anna").
		Return(&workflow.Session{ID: 1, Operator: "Anna", Status: workflow.SessionActive, StartedAt: started}, nil)
	w = doJSON(t, f.router, http.MethodPost, "/api/compressor/start", map[string]any{"operator": "Anna"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	f.workflow.EXPECT().StartCompressorSession(gomock.Any(), "Ben").
		Return(nil, &workflow.Error{Op: "start_session", Err: workflow.ErrSessionAlreadyActive})
	w = doJSON(t, f.router, http.MethodPost, "/api/compressor/start", map[string]any{"operator": "Ben"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "session_already_active", decode(t, w)["code"])

	f.workflow.EXPECT().StopCompressorSession(gomock.Any(), "").
		Return(&workflow.Session{ID: 1, Status: workflow.SessionClosed, ElapsedSeconds: 600}, nil)
	w = doJSON(t, f.router, http.MethodPost, "/api/compressor/stop", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 600, decode(t, w)["elapsedSeconds"])

	f.workflow.EXPECT().ListSessions(gomock.Any(), 20).Return([]workflow.Session{{ID: 1}}, nil)
	w = doJSON(t, f.router, http.MethodGet, "/api/compressor/sessions?limit=20", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestResetSession(t *testing.T) {
	f := newFixture(t)

	w := doJSON(t, f.router, http.MethodPost, "/api/compressor/reset", map[string]any{"reason": "Wartung"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "the password is required")

	f.workflow.EXPECT().ResetCompressorSession(gomock.Any(), "falsch", "").Return(nil, workflow.ErrAuthenticationFailed)
	w = doJSON(t, f.router, http.MethodPost, "/api/compressor/reset", map[string]any{"password": "falsch"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"authentication failed","code":"authentication_failed"}`, w.Body.String())

	f.workflow.EXPECT().ResetCompressorSession(gomock.Any(), "kompressor-geheim", "Wartung").
		Return(&workflow.ResetResult{
			Closed:  &workflow.Session{ID: 1, Status: workflow.SessionClosed, Reset: true, ElapsedSeconds: 3600},
			Current: &workflow.Session{ID: 2, Status: workflow.SessionActive, PreviousElapsedSeconds: 3600},
		}, nil)
	w = doJSON(t, f.router, http.MethodPost, "/api/compressor/reset", map[string]any{"password": "kompressor-geheim", "reason": "Wartung"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.EqualValues(t, 2, body["current"].(map[string]any)["id"])
	assert.Equal(t, true, body["closed"].(map[string]any)["reset"])

	w = doJSON(t, f.router, http.MethodPost, "/api/compressor/reset", map[string]any{"password": "raten"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code, "reset attempts have their own limit")
}

func TestRegistryEndpoints(t *testing.T) {
	f := newFixture(t)

	f.registry.EXPECT().CreateCustomer(gomock.Any(), registry.CustomerInput{Name: "Tauchbasis Nord", Phone: "0401234"}).
		Return(&model.Customer{ID: 1, Name: "Tauchbasis Nord"}, nil)
	w := doJSON(t, f.router, http.MethodPost, "/api/customers", map[string]any{"name": "Tauchbasis Nord", "phone": "0401234"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, f.router, http.MethodPost, "/api/customers", map[string]any{"phone": "0401234"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	f.registry.EXPECT().GetCustomer(gomock.Any(), int64(99)).Return(nil, fmt.Errorf("customer 99: %w", registry.ErrNotFound))
	w = doJSON(t, f.router, http.MethodGet, "/api/customers/99", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	customerID := int64(1)
	f.registry.EXPECT().CreateBottle(gomock.Any(), registry.BottleInput{Barcode: "4006381333931", SizeLiters: 12, MaxPressure: 232, CustomerID: &customerID}).
		Return(&model.Bottle{ID: 1, InternalNumber: "WM-000001", Active: true}, nil)
	w = doJSON(t, f.router, http.MethodPost, "/api/bottles", map[string]any{"barcode": "4006381333931", "sizeLiters": 12, "maxPressure": 232, "customerId": 1})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "WM-000001", decode(t, w)["internalNumber"])

	f.registry.EXPECT().CreateBottle(gomock.Any(), gomock.Any()).Return(nil, fmt.Errorf("%w: internal number WM-000001", registry.ErrDuplicate))
	w = doJSON(t, f.router, http.MethodPost, "/api/bottles", map[string]any{"internalNumber": "WM-000001"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, codeDuplicate, decode(t, w)["code"])

	f.registry.EXPECT().CreateBottle(gomock.Any(), gomock.Any()).Return(nil, fmt.Errorf("%w: bad barcode", registry.ErrInvalidInput))
	w = doJSON(t, f.router, http.MethodPost, "/api/bottles", map[string]any{"barcode": "123"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	active := true
	f.registry.EXPECT().ListBottles(gomock.Any(), registry.BottleFilter{Active: &active, ListOptions: registry.ListOptions{Query: "wm", Limit: 10}}).
		Return(nil, nil)
	w = doJSON(t, f.router, http.MethodGet, "/api/bottles?active=true&q=wm&limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
	w = doJSON(t, f.router, http.MethodGet, "/api/bottles?active=vielleicht", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	f.registry.EXPECT().LookupBottle(gomock.Any(), "4006381333931").Return(&model.Bottle{ID: 1, InternalNumber: "WM-000001"}, nil)
	w = doJSON(t, f.router, http.MethodGet, "/api/bottles/lookup?barcode=4006381333931", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, f.router, http.MethodGet, "/api/bottles/lookup", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	f.registry.EXPECT().DeactivateBottle(gomock.Any(), int64(1)).Return(&model.Bottle{ID: 1, Active: false}, nil)
	w = doJSON(t, f.router, http.MethodPost, "/api/bottles/1/deactivate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["active"])

	date := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	f.registry.EXPECT().RecordInspection(gomock.Any(), int64(1), registry.InspectionInput{Date: date, IntervalYears: 5, Protocol: "ok"}).
		Return(&model.Bottle{ID: 1}, nil)
	w = doJSON(t, f.router, http.MethodPost, "/api/bottles/1/inspection", map[string]any{"date": date.Format(time.RFC3339), "intervalYears": 5, "protocol": "ok"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestResponsesAreCachedUntilAWrite(t *testing.T) {
	ctrl := gomock.NewController(t)
	wf := mocks.NewMockWorkflow(ctrl)
	cfg := testServerConfig()
	cfg.CacheTTL = time.Minute
	router := NewRouter(Deps{Workflow: wf, Registry: mocks.NewMockRegistry(ctrl), Server: cfg})

	wf.EXPECT().ListEntries(gomock.Any(), gomock.Any()).Return([]workflow.Entry{{ID: 1}}, nil).Times(2)
	wf.EXPECT().CancelEntry(gomock.Any(), int64(1), "").Return(&workflow.Entry{ID: 1, Status: workflow.StatusCancelled}, nil)

	doJSON(t, router, http.MethodGet, "/api/waitlist", nil)
	doJSON(t, router, http.MethodGet, "/api/waitlist", nil)
	doJSON(t, router, http.MethodPost, "/api/waitlist/1/cancel", nil)
	doJSON(t, router, http.MethodGet, "/api/waitlist", nil)
}

func TestSubscriptions(t *testing.T) {
	db := dbtest.Open(t)
	router := NewRouter(Deps{DB: db, Server: testServerConfig()})
	endpoint := "https://push.example.com/send/abc"

	w := doJSON(t, router, http.MethodPut, "/api/subscriptions", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid request","code":"invalid_request"}`, w.Body.String())

	w = doJSON(t, router, http.MethodPut, "/api/subscriptions", map[string]any{"endpoint": "kein-link", "p256dh": "k", "auth": "a"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPut, "/api/subscriptions", map[string]any{"endpoint": endpoint, "p256dh": "key-1", "auth": "auth-1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = doJSON(t, router, http.MethodPut, "/api/subscriptions", map[string]any{"endpoint": endpoint, "p256dh": "key-2", "auth": "auth-2"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var stored []model.PushSubscription
	require.NoError(t, db.Find(&stored).Error)
	require.Len(t, stored, 1)
	assert.Equal(t, "key-2", stored[0].P256DH)

	w = doJSON(t, router, http.MethodGet, "/api/subscriptions?endpoint="+endpoint, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, endpoint, decode(t, w)["endpoint"])

	w = doJSON(t, router, http.MethodDelete, "/api/subscriptions", map[string]any{"endpoint": endpoint})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/subscriptions?endpoint="+endpoint, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = doJSON(t, router, http.MethodGet, "/api/subscriptions", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVAPIDPublicKey(t *testing.T) {
	router := NewRouter(Deps{Server: testServerConfig()})
	w := doJSON(t, router, http.MethodGet, "/api/vapid_public_key", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	router = NewRouter(Deps{Server: testServerConfig(), WebPush: &webpush.Options{VAPIDPublicKey: "BPub"}})
	w = doJSON(t, router, http.MethodGet, "/api/vapid_public_key", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"public_key":"BPub"}`, w.Body.String())
}

func TestHealthAndMetrics(t *testing.T) {
	collector := metrics.NewCollector()
	collector.Record(workflow.Event{Kind: workflow.EventEntryAccepted})
	router := NewRouter(Deps{DB: dbtest.Open(t), Metrics: collector, Server: testServerConfig()})

	w := doJSON(t, router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = doJSON(t, router, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `status="waiting"`)
}
