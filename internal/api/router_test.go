package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mchen88/cartly/internal/app"
	iauth "github.com/mchen88/cartly/internal/auth"
	"github.com/mchen88/cartly/internal/database/testutil"
	"github.com/mchen88/cartly/internal/notifications"
	"github.com/mchen88/cartly/pkg/response"
)

func testConfig() *app.Config {
	return &app.Config{
		Features: app.FeatureConfig{
			Notifications: app.NotificationSettings{
				Enabled:       true,
				PollInterval:  30 * time.Second,
				ReadRetention: 7 * 24 * time.Hour,
			},
			Blog: app.ToggleConfig{Enabled: true},
		},
	}
}

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	jwt, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "router-test-secret", Issuer: "cartly"})
	require.NoError(t, err)

	engine, err := NewRouter(db, jwt, testConfig(), notifications.NewHub())
	require.NoError(t, err)
	return engine, db
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)
	return recorder
}

func decodeData(t *testing.T, recorder *httptest.ResponseRecorder, dest any) {
	t.Helper()
	var payload response.Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	require.True(t, payload.Success)
	dataBytes, err := json.Marshal(payload.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(dataBytes, dest))
}

func registerCustomer(t *testing.T, engine *gin.Engine, email string) string {
	t.Helper()
	recorder := doJSON(t, engine, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":    email,
		"password": "long enough",
		"name":     "Test Customer",
	})
	require.Equal(t, http.StatusCreated, recorder.Code)

	var data struct {
		Token string `json:"token"`
	}
	decodeData(t, recorder, &data)
	require.NotEmpty(t, data.Token)
	return data.Token
}

func loginAdmin(t *testing.T, engine *gin.Engine) string {
	t.Helper()
	recorder := doJSON(t, engine, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "admin@localhost",
		"password": "changeme",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	var data struct {
		Token string `json:"token"`
	}
	decodeData(t, recorder, &data)
	return data.Token
}

func TestRouterHealthAndNotFound(t *testing.T) {
	engine, _ := newTestRouter(t)

	recorder := doJSON(t, engine, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = doJSON(t, engine, http.MethodGet, "/api/nowhere", "", nil)
	require.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestRouterAuthFlow(t *testing.T) {
	engine, _ := newTestRouter(t)

	token := registerCustomer(t, engine, "router@example.com")

	recorder := doJSON(t, engine, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var me struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	decodeData(t, recorder, &me)
	require.Equal(t, "router@example.com", me.Email)
	require.Equal(t, "customer", me.Role)

	recorder = doJSON(t, engine, http.MethodGet, "/api/auth/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestRouterNotificationAccessControl(t *testing.T) {
	engine, _ := newTestRouter(t)

	customerToken := registerCustomer(t, engine, "shopper@example.com")
	adminToken := loginAdmin(t, engine)

	// Creation sits behind the admin gate in both scopes.
	body := gin.H{
		"type":     "system",
		"category": "system",
		"title":    "Maintenance tonight",
		"message":  "Back by morning",
	}
	recorder := doJSON(t, engine, http.MethodPost, "/api/notifications", customerToken, body)
	require.Equal(t, http.StatusForbidden, recorder.Code)

	recorder = doJSON(t, engine, http.MethodPost, "/api/notifications", adminToken, body)
	require.Equal(t, http.StatusCreated, recorder.Code)

	// Broadcast record is visible to the customer.
	recorder = doJSON(t, engine, http.MethodGet, "/api/notifications", customerToken, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, "30", recorder.Header().Get("X-Poll-Interval"))

	var data struct {
		Notifications []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"notifications"`
		UnreadCount int64 `json:"unread_count"`
	}
	decodeData(t, recorder, &data)
	require.Len(t, data.Notifications, 1)
	require.Equal(t, "Maintenance tonight", data.Notifications[0].Title)
	require.Equal(t, int64(1), data.UnreadCount)

	// Admin scope rejects customer tokens.
	recorder = doJSON(t, engine, http.MethodGet, "/api/admin/notifications", customerToken, nil)
	require.Equal(t, http.StatusForbidden, recorder.Code)

	recorder = doJSON(t, engine, http.MethodGet, "/api/admin/notifications", adminToken, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
}

func TestRouterMarkReadRoundTrip(t *testing.T) {
	engine, _ := newTestRouter(t)

	customerToken := registerCustomer(t, engine, "reader@example.com")
	adminToken := loginAdmin(t, engine)

	recorder := doJSON(t, engine, http.MethodPost, "/api/notifications", adminToken, gin.H{
		"type":     "promotion",
		"category": "deals",
		"title":    "Spring sale",
		"message":  "20% off everything",
	})
	require.Equal(t, http.StatusCreated, recorder.Code)

	recorder = doJSON(t, engine, http.MethodPatch, "/api/notifications/read", customerToken, gin.H{"all": true})
	require.Equal(t, http.StatusOK, recorder.Code)

	var marked struct {
		ModifiedCount int64 `json:"modified_count"`
	}
	decodeData(t, recorder, &marked)
	require.Equal(t, int64(1), marked.ModifiedCount)

	recorder = doJSON(t, engine, http.MethodGet, "/api/notifications?unread_only=true", customerToken, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var data struct {
		Notifications []json.RawMessage `json:"notifications"`
		UnreadCount   int64             `json:"unread_count"`
	}
	decodeData(t, recorder, &data)
	require.Empty(t, data.Notifications)
	require.Zero(t, data.UnreadCount)
}

func TestRouterContactFormPublic(t *testing.T) {
	engine, _ := newTestRouter(t)

	recorder := doJSON(t, engine, http.MethodPost, "/api/contact", "", gin.H{
		"name":  "Visitor",
		"email": "visitor@example.com",
		"body":  "Do you ship abroad?",
	})
	require.Equal(t, http.StatusCreated, recorder.Code)

	adminToken := loginAdmin(t, engine)
	recorder = doJSON(t, engine, http.MethodGet, "/api/admin/messages?unhandled_only=true", adminToken, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var messages []struct {
		Name string `json:"name"`
	}
	decodeData(t, recorder, &messages)
	require.Len(t, messages, 1)
	require.Equal(t, "Visitor", messages[0].Name)
}
