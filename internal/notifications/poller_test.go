package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeNotificationServer struct {
	mu       sync.Mutex
	records  []Notification
	failNext bool
}

func (s *fakeNotificationServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/notifications", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		switch r.Method {
		case http.MethodGet:
			unread := int64(0)
			for _, n := range s.records {
				if !n.IsRead {
					unread++
				}
			}
			writeJSON(w, map[string]any{
				"success": true,
				"data": map[string]any{
					"notifications": s.records,
					"unread_count":  unread,
				},
			})
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/api/notifications/read", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.failNext {
			s.failNext = false
			w.WriteHeader(http.StatusInternalServerError)
			writeJSON(w, map[string]any{
				"success": false,
				"error":   map[string]string{"code": "INTERNAL_ERROR", "message": "boom"},
			})
			return
		}

		var req struct {
			IDs []string `json:"ids"`
			All bool     `json:"all"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		modified := int64(0)
		for i := range s.records {
			n := &s.records[i]
			if n.IsRead {
				continue
			}
			if req.All || contains(req.IDs, n.ID) {
				n.IsRead = true
				modified++
			}
		}
		writeJSON(w, map[string]any{
			"success": true,
			"data":    map[string]any{"modified_count": modified},
		})
	})
	mux.HandleFunc("/api/notifications/", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		if r.Method != http.MethodDelete {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		id := r.URL.Path[len("/api/notifications/"):]
		deleted := int64(0)
		kept := s.records[:0]
		for _, n := range s.records {
			if n.ID == id {
				deleted++
				continue
			}
			kept = append(kept, n)
		}
		s.records = kept
		writeJSON(w, map[string]any{
			"success": true,
			"data":    map[string]any{"deleted_count": deleted},
		})
	})
	return mux
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func contains(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func newFakeServer(t *testing.T, records ...Notification) (*fakeNotificationServer, *Poller) {
	t.Helper()
	fake := &fakeNotificationServer{records: records}
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	poller := NewPoller(server.URL+"/api/notifications", "test-token",
		WithHTTPClient(server.Client()))
	return fake, poller
}

func TestPollerFetchesOnRefresh(t *testing.T) {
	_, poller := newFakeServer(t,
		Notification{ID: "n1", Title: "First"},
		Notification{ID: "n2", Title: "Second", IsRead: true},
	)

	require.NoError(t, poller.Refresh(context.Background()))

	snapshot := poller.Snapshot()
	require.Len(t, snapshot.Notifications, 2)
	require.Equal(t, int64(1), snapshot.UnreadCount)
	require.False(t, snapshot.FetchedAt.IsZero())
}

func TestPollerMarkReadUpdatesSnapshotOptimistically(t *testing.T) {
	_, poller := newFakeServer(t,
		Notification{ID: "n1"},
		Notification{ID: "n2"},
	)
	require.NoError(t, poller.Refresh(context.Background()))

	require.NoError(t, poller.MarkRead(context.Background(), "n1"))

	snapshot := poller.Snapshot()
	require.Equal(t, int64(1), snapshot.UnreadCount)
	require.True(t, snapshot.Notifications[0].IsRead)
	require.NotNil(t, snapshot.Notifications[0].ReadAt)
	require.False(t, snapshot.Notifications[1].IsRead)
}

func TestPollerMarkAllReadZeroesBadge(t *testing.T) {
	_, poller := newFakeServer(t,
		Notification{ID: "n1"},
		Notification{ID: "n2"},
		Notification{ID: "n3"},
	)
	require.NoError(t, poller.Refresh(context.Background()))

	require.NoError(t, poller.MarkAllRead(context.Background()))

	snapshot := poller.Snapshot()
	require.Zero(t, snapshot.UnreadCount)
	for _, n := range snapshot.Notifications {
		require.True(t, n.IsRead)
	}
}

func TestPollerDeleteRemovesRecord(t *testing.T) {
	_, poller := newFakeServer(t,
		Notification{ID: "n1"},
		Notification{ID: "n2"},
	)
	require.NoError(t, poller.Refresh(context.Background()))

	require.NoError(t, poller.Delete(context.Background(), "n1"))

	snapshot := poller.Snapshot()
	require.Len(t, snapshot.Notifications, 1)
	require.Equal(t, "n2", snapshot.Notifications[0].ID)
	require.Equal(t, int64(1), snapshot.UnreadCount)
}

func TestPollerReloadsAfterFailedMutation(t *testing.T) {
	fake, poller := newFakeServer(t,
		Notification{ID: "n1"},
	)
	require.NoError(t, poller.Refresh(context.Background()))

	fake.mu.Lock()
	fake.failNext = true
	fake.mu.Unlock()

	err := poller.MarkRead(context.Background(), "n1")
	require.Error(t, err)

	// The failed mutation triggered a reload, so the snapshot still
	// matches the server: n1 remains unread.
	snapshot := poller.Snapshot()
	require.Equal(t, int64(1), snapshot.UnreadCount)
	require.False(t, snapshot.Notifications[0].IsRead)
}

func TestPollerRunStopsOnCancel(t *testing.T) {
	var updates int
	var mu sync.Mutex

	fake := &fakeNotificationServer{records: []Notification{{ID: "n1"}}}
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	poller := NewPoller(server.URL+"/api/notifications", "",
		WithHTTPClient(server.Client()),
		WithPollInterval(10*time.Millisecond),
		WithOnUpdate(func(Snapshot) {
			mu.Lock()
			updates++
			mu.Unlock()
		}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- poller.Run(ctx) }()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return updates >= 2
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop after cancellation")
	}
}
