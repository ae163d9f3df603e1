package status

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nzali-fankem-vladimir/gestion-clinic-client/internal/chat"
	"github.com/nzali-fankem-vladimir/gestion-clinic-client/internal/clinicapi"
	"github.com/nzali-fankem-vladimir/gestion-clinic-client/internal/notify"
	"github.com/nzali-fankem-vladimir/gestion-clinic-client/internal/observability/metrics"
	"github.com/nzali-fankem-vladimir/gestion-clinic-client/internal/push"
	"github.com/nzali-fankem-vladimir/gestion-clinic-client/internal/session"
	"github.com/nzali-fankem-vladimir/gestion-clinic-client/internal/store"
)

type stubConnection struct{ connected bool }

func (s stubConnection) IsConnected() bool { return s.connected }
func (s stubConnection) StatusDescription() string {
	return "state=connected connected=true activating=false"
}

type stubAPI struct{ counts map[int]int }

func (s stubAPI) GetConversation(context.Context, int) ([]clinicapi.ChatMessage, error) {
	return nil, nil
}
func (s stubAPI) GetUnreadCounts(context.Context) (map[int]int, error) { return s.counts, nil }
func (s stubAPI) MarkConversationRead(context.Context, int) error      { return nil }

type stubTransport struct{}

func (stubTransport) IsConnected() bool              { return true }
func (stubTransport) Connect(context.Context) error  { return nil }
func (stubTransport) Publish(string, any) error      { return nil }
func (stubTransport) Subscribe(string, push.Handler) {}

func newFixture(t *testing.T) http.Handler {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemoryStore()

	policy := notify.NewPolicy(30 * time.Second)
	sink := notify.NewSilentSink(ctx, st, nil)
	center := notify.NewCenter(ctx, st, policy, sink, 0, nil, nil)
	center.Warning(ctx, "Stock", "Stock faible")
	sink.Add(ctx, "Données non disponibles", notify.KindWarning)
	sink.Add(ctx, "Données non disponibles", notify.KindWarning)

	sess, err := session.New(ctx, st)
	require.NoError(t, err)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"userId": 42})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)
	require.NoError(t, sess.SetToken(ctx, signed))

	chatSvc := chat.NewService(stubAPI{counts: map[int]int{3: 2}}, stubTransport{}, sess, nil)
	chatSvc.RefreshUnreadCounts(ctx)

	reg := prometheus.NewRegistry()
	m := metrics.NewClientMetrics(reg)
	m.ObserveConnect("success")

	return New(Config{
		Connection: stubConnection{connected: true},
		Center:     center,
		Silent:     sink,
		Chat:       chatSvc,
		Registry:   reg,
	})
}

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestStatusEndpoint(t *testing.T) {
	rec := get(t, newFixture(t), "/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["connected"])
	assert.Contains(t, body["description"], "state=connected")
}

func TestNotificationsEndpoint(t *testing.T) {
	rec := get(t, newFixture(t), "/notifications")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Notifications []notify.Notification `json:"notifications"`
		UnreadCount   int                   `json:"unreadCount"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Notifications, 1)
	assert.Equal(t, "Stock faible", body.Notifications[0].Message)
	assert.Equal(t, 1, body.UnreadCount)
}

func TestSilentEndpointReportsCoalescedCount(t *testing.T) {
	rec := get(t, newFixture(t), "/notifications/silent")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Notifications []notify.SilentNotification `json:"notifications"`
		Count         int                         `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Notifications, 1)
	assert.Equal(t, 2, body.Count)
}

func TestChatUnreadEndpoint(t *testing.T) {
	rec := get(t, newFixture(t), "/chat/unread")
	require.Equal(t, http.StatusOK, rec.Code)

	var counts map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &counts))
	assert.Equal(t, map[string]int{"3": 2}, counts)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newFixture(t), "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "clinic_push_connect_attempts_total")
}
