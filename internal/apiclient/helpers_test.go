package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/me/uniportal/internal/session"
	"github.com/me/uniportal/pkg/model"
)

var testSession = &model.Session{
	Token: "tok-123",
	User: model.CurrentUser{
		ID:       "stu-1",
		Role:     model.RoleStudent,
		FullName: "Jane Doe",
		Username: "jdoe",
	},
	CreatedAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
}

// testEnv bundles a client wired to an httptest server.
type testEnv struct {
	client  *Client
	store   *session.MemoryStore
	server  *httptest.Server
	hits    atomic.Int32
	expired atomic.Int32
}

func newTestEnv(t *testing.T, handler http.HandlerFunc, opts ...Option) *testEnv {
	t.Helper()
	env := &testEnv{store: session.NewMemoryStore()}
	env.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(env.server.Close)

	opts = append([]Option{WithSessionExpiredHandler(func() { env.expired.Add(1) })}, opts...)
	env.client = New(Config{BaseURL: env.server.URL, Timeout: 5 * time.Second, DownloadDir: t.TempDir()}, env.store, nil, opts...)
	return env
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	sess := *testSession
	if err := e.store.Set(context.Background(), &sess); err != nil {
		t.Fatalf("seed session: %v", err)
	}
}

func writeEnvelope(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func okData(data any) map[string]any {
	return map[string]any{"success": true, "data": data}
}
