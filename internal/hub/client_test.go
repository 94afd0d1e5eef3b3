package hub

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialHub(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		h.ServeConn(conn)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var m Message
	require.NoError(t, conn.ReadJSON(&m))
	return m
}

func TestServeConn_SubscribeAndReceive(t *testing.T) {
	// Подготовка
	h, _ := newTestHub(t, 8)
	conn := dialHub(t, h)

	// Действие
	require.NoError(t, conn.WriteJSON(map[string]any{"type": CommandSubscribe, "lat": 0, "lng": 0, "radiusKm": 10}))
	ack := readMessage(t, conn)

	// Проверки
	assert.Equal(t, EventSubscribed, ack.Event)
	require.Eventually(t, func() bool { return h.Stats().Subscriptions == 1 }, time.Second, 10*time.Millisecond)

	h.Broadcast(EventNewReport, reportAt(0, 0.05))
	msg := readMessage(t, conn)
	assert.Equal(t, EventNewReport, msg.Event)
}

func TestServeConn_CommandErrors(t *testing.T) {
	h, _ := newTestHub(t, 8)
	conn := dialHub(t, h)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	assert.Equal(t, EventError, readMessage(t, conn).Event)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": CommandSubscribe, "lat": 0}))
	assert.Equal(t, EventError, readMessage(t, conn).Event)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": CommandSubscribe, "lat": 0, "lng": 0, "radiusKm": -5}))
	assert.Equal(t, EventError, readMessage(t, conn).Event)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "dance"}))
	assert.Equal(t, EventError, readMessage(t, conn).Event)

	assert.Equal(t, 0, h.Stats().Subscriptions)
}

func TestServeConn_UnsubscribeAndDisconnect(t *testing.T) {
	h, _ := newTestHub(t, 8)
	conn := dialHub(t, h)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": CommandSubscribe, "lat": 1, "lng": 1, "radiusKm": 5}))
	assert.Equal(t, EventSubscribed, readMessage(t, conn).Event)
	require.NoError(t, conn.WriteJSON(map[string]any{"type": CommandUnsubscribe}))
	assert.Equal(t, EventUnsubscribed, readMessage(t, conn).Event)
	assert.Equal(t, 0, h.Stats().Subscriptions)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return h.Stats().Connections == 0 }, 2*time.Second, 10*time.Millisecond)
}
