package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"rentalassist-backend/internal/middleware"
	"rentalassist-backend/internal/models"
)

func dial(t *testing.T, srv *httptest.Server, token string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	return websocket.DefaultDialer.Dial(url, nil)
}

func TestHub_DeliversToSession(t *testing.T) {
	auth := middleware.NewSessionAuth("secret", time.Hour)
	hub := NewHub(nil, auth)
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	defer srv.Close()
	defer hub.Close()

	sessionID := uuid.New()
	token, _, err := auth.GenerateSessionToken(sessionID)
	require.NoError(t, err)

	conn, _, err := dial(t, srv, token)
	require.NoError(t, err)
	defer conn.Close()

	key := sessionID.String()
	require.Eventually(t, func() bool { return hub.Connections(key) == 1 }, time.Second, 5*time.Millisecond)

	hub.SendToSession(key, models.WSMessage{
		Type:    "generating_started",
		Payload: models.GeneratingUpdate{SessionID: key, Generating: true},
	})

	var got struct {
		Type    string                  `json:"type"`
		Payload models.GeneratingUpdate `json:"payload"`
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, conn.ReadJSON(&got))
	require.Equal(t, "generating_started", got.Type)
	require.True(t, got.Payload.Generating)

	// Frames for other sessions are not delivered here.
	hub.SendToSession(uuid.NewString(), models.WSMessage{Type: "noise"})

	conn.Close()
	require.Eventually(t, func() bool { return hub.Connections(key) == 0 }, time.Second, 5*time.Millisecond)
}

func TestHub_RejectsBadToken(t *testing.T) {
	hub := NewHub(nil, middleware.NewSessionAuth("secret", time.Hour))
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	defer srv.Close()

	_, resp, err := dial(t, srv, "")
	require.Error(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	forged, _, err := middleware.NewSessionAuth("other", time.Hour).GenerateSessionToken(uuid.New())
	require.NoError(t, err)
	_, resp, err = dial(t, srv, forged)
	require.Error(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
