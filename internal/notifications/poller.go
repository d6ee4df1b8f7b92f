package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mchen88/cartly/pkg/logger"
)

// DefaultPollInterval matches the storefront badge refresh cadence.
const DefaultPollInterval = 30 * time.Second

// Notification is the wire shape returned by the list endpoint.
type Notification struct {
	ID        string         `json:"id"`
	UserID    *string        `json:"user_id"`
	Type      string         `json:"type"`
	Category  string         `json:"category"`
	Priority  string         `json:"priority,omitempty"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	ActionURL string         `json:"action_url,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	IsRead    bool           `json:"is_read"`
	ReadAt    *time.Time     `json:"read_at,omitempty"`
	ExpiresAt *time.Time     `json:"expires_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Snapshot is the poller's local view of the caller's notifications.
type Snapshot struct {
	Notifications []Notification
	UnreadCount   int64
	FetchedAt     time.Time
}

type wireError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *wireError) String() string {
	if e == nil {
		return "unknown error"
	}
	return e.Code + ": " + e.Message
}

type listEnvelope struct {
	Success bool `json:"success"`
	Data    struct {
		Notifications []Notification `json:"notifications"`
		UnreadCount   int64          `json:"unread_count"`
	} `json:"data"`
	Error *wireError `json:"error"`
}

type mutationEnvelope struct {
	Success bool `json:"success"`
	Data    struct {
		ModifiedCount int64 `json:"modified_count"`
		DeletedCount  int64 `json:"deleted_count"`
	} `json:"data"`
	Error *wireError `json:"error"`
}

// Poller keeps a local notification snapshot fresh by refetching on an
// interval. Mutations are applied optimistically from the server's
// modified counts; a failed request falls back to a full reload, so the
// snapshot converges on the server state either way.
type Poller struct {
	baseURL  string
	token    string
	client   *http.Client
	interval time.Duration
	onUpdate func(Snapshot)
	log      *zap.Logger

	mu       sync.RWMutex
	snapshot Snapshot
}

// PollerOption customises a Poller.
type PollerOption func(*Poller)

// WithPollInterval overrides the refresh cadence.
func WithPollInterval(interval time.Duration) PollerOption {
	return func(p *Poller) {
		if interval > 0 {
			p.interval = interval
		}
	}
}

// WithHTTPClient injects an HTTP client, primarily for tests.
func WithHTTPClient(client *http.Client) PollerOption {
	return func(p *Poller) {
		if client != nil {
			p.client = client
		}
	}
}

// WithOnUpdate registers a callback invoked after every snapshot change.
func WithOnUpdate(fn func(Snapshot)) PollerOption {
	return func(p *Poller) {
		p.onUpdate = fn
	}
}

// NewPoller constructs a Poller for the notification endpoint at baseURL,
// e.g. "https://shop.example.com/api/notifications".
func NewPoller(baseURL, token string, opts ...PollerOption) *Poller {
	p := &Poller{
		baseURL:  baseURL,
		token:    token,
		client:   &http.Client{Timeout: 10 * time.Second},
		interval: DefaultPollInterval,
		log:      logger.WithModule("notifications.poller"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Snapshot returns the current local view.
func (p *Poller) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshot
}

// Run fetches immediately and then refetches on the poll interval until
// the context is cancelled. It blocks; run it in a goroutine.
func (p *Poller) Run(ctx context.Context) error {
	if err := p.Refresh(ctx); err != nil {
		p.log.Warn("initial notification fetch failed", zap.Error(err))
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := p.Refresh(ctx); err != nil {
				p.log.Warn("notification refresh failed", zap.Error(err))
			}
		}
	}
}

// Refresh replaces the snapshot with the server's current state.
func (p *Poller) Refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL, nil)
	if err != nil {
		return fmt.Errorf("poller: build request: %w", err)
	}
	p.authorise(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("poller: fetch notifications: %w", err)
	}
	defer resp.Body.Close()

	var envelope listEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("poller: decode response: %w", err)
	}
	if !envelope.Success {
		return fmt.Errorf("poller: server error: %s", envelope.Error.String())
	}

	p.replace(Snapshot{
		Notifications: envelope.Data.Notifications,
		UnreadCount:   envelope.Data.UnreadCount,
		FetchedAt:     time.Now(),
	})
	return nil
}

// MarkRead marks the given ids read on the server and folds the result
// into the local snapshot.
func (p *Poller) MarkRead(ctx context.Context, ids ...string) error {
	modified, err := p.mutate(ctx, http.MethodPatch, p.baseURL+"/read", map[string]any{"ids": ids})
	if err != nil {
		return p.reloadAfter(ctx, err)
	}
	if modified > 0 {
		p.applyRead(ids)
	}
	return nil
}

// MarkAllRead marks everything read.
func (p *Poller) MarkAllRead(ctx context.Context) error {
	_, err := p.mutate(ctx, http.MethodPatch, p.baseURL+"/read", map[string]any{"all": true})
	if err != nil {
		return p.reloadAfter(ctx, err)
	}
	p.applyReadAll()
	return nil
}

// Delete removes one notification.
func (p *Poller) Delete(ctx context.Context, id string) error {
	deleted, err := p.mutate(ctx, http.MethodDelete, p.baseURL+"/"+id, nil)
	if err != nil {
		return p.reloadAfter(ctx, err)
	}
	if deleted > 0 {
		p.applyDelete(id)
	}
	return nil
}

func (p *Poller) mutate(ctx context.Context, method, url string, body map[string]any) (int64, error) {
	var payload *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("poller: encode request: %w", err)
		}
		payload = bytes.NewReader(encoded)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, payload)
	if err != nil {
		return 0, fmt.Errorf("poller: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	p.authorise(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("poller: %s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	var envelope mutationEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return 0, fmt.Errorf("poller: decode response: %w", err)
	}
	if !envelope.Success {
		return 0, fmt.Errorf("poller: server error: %s", envelope.Error.String())
	}

	if envelope.Data.DeletedCount > 0 {
		return envelope.Data.DeletedCount, nil
	}
	return envelope.Data.ModifiedCount, nil
}

// reloadAfter attempts a full refresh so a failed optimistic mutation
// cannot leave the snapshot drifted; the original error is returned.
func (p *Poller) reloadAfter(ctx context.Context, cause error) error {
	if err := p.Refresh(ctx); err != nil {
		p.log.Warn("snapshot reload failed", zap.Error(err))
	}
	return cause
}

func (p *Poller) authorise(req *http.Request) {
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}
}

func (p *Poller) replace(snapshot Snapshot) {
	p.mu.Lock()
	p.snapshot = snapshot
	p.mu.Unlock()
	p.notify()
}

func (p *Poller) applyRead(ids []string) {
	members := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		members[id] = struct{}{}
	}

	now := time.Now()
	p.mu.Lock()
	for i := range p.snapshot.Notifications {
		n := &p.snapshot.Notifications[i]
		if _, ok := members[n.ID]; ok && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &now
			if p.snapshot.UnreadCount > 0 {
				p.snapshot.UnreadCount--
			}
		}
	}
	p.mu.Unlock()
	p.notify()
}

func (p *Poller) applyReadAll() {
	now := time.Now()
	p.mu.Lock()
	for i := range p.snapshot.Notifications {
		n := &p.snapshot.Notifications[i]
		if !n.IsRead {
			n.IsRead = true
			n.ReadAt = &now
		}
	}
	p.snapshot.UnreadCount = 0
	p.mu.Unlock()
	p.notify()
}

func (p *Poller) applyDelete(id string) {
	p.mu.Lock()
	kept := p.snapshot.Notifications[:0]
	for _, n := range p.snapshot.Notifications {
		if n.ID == id {
			if !n.IsRead && p.snapshot.UnreadCount > 0 {
				p.snapshot.UnreadCount--
			}
			continue
		}
		kept = append(kept, n)
	}
	p.snapshot.Notifications = kept
	p.mu.Unlock()
	p.notify()
}

func (p *Poller) notify() {
	if p.onUpdate != nil {
		p.onUpdate(p.Snapshot())
	}
}
