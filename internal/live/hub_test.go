package live

import (
	"encoding/json"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wartungsmanager-backend/internal/logging"
	"wartungsmanager-backend/internal/workflow"
)

func TestMain(m *testing.M) {
	logging.SetNop()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func dial(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	r := gin.New()
	r.GET("/live", hub.ServeWS)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/live", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubBroadcastsEvents(t *testing.T) {
	hub := NewHub()
	conn := dial(t, hub)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	hub.Record(workflow.Event{
		Kind:  workflow.EventEntryFilling,
		Op:    "start_filling",
		Entry: &workflow.Entry{ID: 5, BottleID: 42, Status: workflow.StatusFilling},
	})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev workflow.Event
	require.NoError(t, json.Unmarshal(data, &ev))
	assert.Equal(t, workflow.EventEntryFilling, ev.Kind)
	require.NotNil(t, ev.Entry)
	assert.EqualValues(t, 42, ev.Entry.BottleID)
	assert.Equal(t, workflow.StatusFilling, ev.Entry.Status)
}

func TestHubForgetsClosedClients(t *testing.T) {
	hub := NewHub()
	conn := dial(t, hub)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)

	assert.NotPanics(t, func() { hub.Record(workflow.Event{Kind: workflow.EventSessionStarted}) })
}

func TestHubClose(t *testing.T) {
	hub := NewHub()
	conn := dial(t, hub)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	hub.Close()
	assert.Equal(t, 0, hub.Clients())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}
