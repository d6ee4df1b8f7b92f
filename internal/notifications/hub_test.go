package notifications

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"
)

func dialHub(t *testing.T, hub *Hub, scope, userID string) *websocket.Conn {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve(scope, userID, w, r)
	}))
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, err := websocket.Dial(wsURL, "", "http://localhost/")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool {
		return hub.SubscriberCount(scope) > 0
	}, 2*time.Second, 10*time.Millisecond)

	return conn
}

func receiveEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event Event
	require.NoError(t, websocket.JSON.Receive(conn, &event))
	return event
}

func TestHubDeliversTargetedEvent(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub, "user", "user-1")

	target := "user-1"
	hub.Publish("user", &target, Event{Event: "notification.created", NotificationID: "n1"})

	event := receiveEvent(t, conn)
	require.Equal(t, "notification.created", event.Event)
	require.Equal(t, "n1", event.NotificationID)
}

func TestHubBroadcastReachesEveryScopeSubscriber(t *testing.T) {
	hub := NewHub()
	connA := dialHub(t, hub, "user", "user-a")
	connB := dialHub(t, hub, "user", "user-b")

	hub.Publish("user", nil, Event{Event: "notification.created", NotificationID: "broadcast"})

	require.Equal(t, "broadcast", receiveEvent(t, connA).NotificationID)
	require.Equal(t, "broadcast", receiveEvent(t, connB).NotificationID)
}

func TestHubSkipsOtherUsersAndScopes(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub, "user", "user-1")

	other := "user-2"
	hub.Publish("user", &other, Event{Event: "notification.created", NotificationID: "skip"})
	hub.Publish("admin", nil, Event{Event: "notification.created", NotificationID: "wrong-scope"})

	target := "user-1"
	hub.Publish("user", &target, Event{Event: "notification.created", NotificationID: "mine"})

	// Only the targeted event arrives.
	require.Equal(t, "mine", receiveEvent(t, conn).NotificationID)
}
