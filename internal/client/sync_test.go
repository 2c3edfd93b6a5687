package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"task-manager-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubServer mimics the REST API closely enough for the sync manager: the
// uniform envelope, a task list, and server-assigned ids.
type stubServer struct {
	*httptest.Server
	mu      sync.Mutex
	tasks   []models.Task
	created int
}

func newStubServer(t *testing.T) *stubServer {
	t.Helper()
	s := &stubServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]any{
			"user":  map[string]string{"id": "u1", "username": "alice", "email": "alice@example.com"},
			"token": "stub-token",
		})
	})
	mux.HandleFunc("/api/tasks", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		switch r.Method {
		case http.MethodGet:
			writeEnvelope(w, http.StatusOK, s.tasks)
		case http.MethodPost:
			var body struct {
				Text string `json:"text"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("Error decoding create body: %v", err)
			}
			s.created++
			task := models.Task{
				ID:     fmt.Sprintf("srv-%d", s.created),
				UserID: "u1",
				Text:   body.Text,
			}
			s.tasks = append(s.tasks, task)
			writeEnvelope(w, http.StatusCreated, task)
		case http.MethodDelete:
			s.tasks = nil
			writeEnvelope(w, http.StatusOK, nil)
		}
	})
	mux.HandleFunc("/api/tasks/", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		id := strings.TrimPrefix(r.URL.Path, "/api/tasks/")
		for i := range s.tasks {
			if s.tasks[i].ID != id {
				continue
			}
			switch r.Method {
			case http.MethodPut:
				var body struct {
					Completed *bool `json:"completed"`
				}
				json.NewDecoder(r.Body).Decode(&body)
				if body.Completed != nil {
					s.tasks[i].Completed = *body.Completed
				}
				writeEnvelope(w, http.StatusOK, s.tasks[i])
			case http.MethodDelete:
				task := s.tasks[i]
				s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
				writeEnvelope(w, http.StatusOK, task)
			}
			return
		}
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "Task not found"})
	})
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func writeEnvelope(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
}

func seedSession(t *testing.T, s *Storage) {
	t.Helper()
	session := Session{
		User:  models.PublicUser{ID: "u1", Username: "alice", Email: "alice@example.com"},
		Token: "stub-token",
	}
	require.NoError(t, s.Put(KeyUser, session))
}

func newTestManager(t *testing.T, s *Storage, baseURL string) *Manager {
	t.Helper()
	m, err := NewManager(s, NewAPIClient(baseURL), zap.NewNop())
	require.NoError(t, err)
	return m
}

func TestAddTaskOffline(t *testing.T) {
	storage := newTestStorage(t)
	m := newTestManager(t, storage, "http://127.0.0.1:1")

	task, err := m.AddTask(context.Background(), "  buy milk  ")
	require.NoError(t, err)
	assert.Equal(t, "buy milk", task.Text)
	assert.Equal(t, SyncLocal, task.Sync)
	assert.NotEmpty(t, task.ID)

	// The task survives a restart.
	m2 := newTestManager(t, storage, "http://127.0.0.1:1")
	tasks := m2.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "buy milk", tasks[0].Text)
	assert.Equal(t, SyncLocal, tasks[0].Sync)
	assert.Equal(t, 1, m2.Analytics().TasksCreated)
}

func TestAddTaskEmptyText(t *testing.T) {
	storage := newTestStorage(t)
	m := newTestManager(t, storage, "http://127.0.0.1:1")

	_, err := m.AddTask(context.Background(), "   ")
	require.Error(t, err)
	assert.Empty(t, m.Tasks())
}

func TestAddTaskMirrored(t *testing.T) {
	server := newStubServer(t)
	storage := newTestStorage(t)
	seedSession(t, storage)
	m := newTestManager(t, storage, server.URL)

	task, err := m.AddTask(context.Background(), "buy milk")
	require.NoError(t, err)
	assert.Equal(t, SyncConfirmed, task.Sync)
	assert.Equal(t, "srv-1", task.ID, "server id replaces the provisional one")

	tasks := m.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "srv-1", tasks[0].ID)
}

func TestAddTaskMirrorFailure(t *testing.T) {
	storage := newTestStorage(t)
	seedSession(t, storage)
	m := newTestManager(t, storage, "http://127.0.0.1:1")

	// An unreachable server must not fail the local mutation.
	task, err := m.AddTask(context.Background(), "buy milk")
	require.NoError(t, err)
	assert.Equal(t, SyncLocal, task.Sync)

	tasks := m.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, SyncLocal, tasks[0].Sync)
}

func TestToggleTaskOffline(t *testing.T) {
	storage := newTestStorage(t)
	m := newTestManager(t, storage, "http://127.0.0.1:1")

	task, err := m.AddTask(context.Background(), "buy milk")
	require.NoError(t, err)

	toggled, err := m.ToggleTask(context.Background(), task.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)
	assert.Equal(t, 1, m.Analytics().TasksCompleted)

	toggled, err = m.ToggleTask(context.Background(), task.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Completed)

	_, err = m.ToggleTask(context.Background(), "missing")
	require.Error(t, err)
}

func TestDeleteTaskOffline(t *testing.T) {
	storage := newTestStorage(t)
	m := newTestManager(t, storage, "http://127.0.0.1:1")

	task, err := m.AddTask(context.Background(), "buy milk")
	require.NoError(t, err)
	require.NoError(t, m.DeleteTask(context.Background(), task.ID))
	assert.Empty(t, m.Tasks())
	assert.Equal(t, 1, m.Analytics().TasksDeleted)
}

func TestRefreshOverwritesLocal(t *testing.T) {
	server := newStubServer(t)
	server.mu.Lock()
	server.tasks = []models.Task{{ID: "srv-existing", UserID: "u1", Text: "from server"}}
	server.mu.Unlock()

	storage := newTestStorage(t)
	seedSession(t, storage)
	local := []LocalTask{{Task: models.Task{ID: "dev-1", Text: "offline task"}, Sync: SyncLocal}}
	require.NoError(t, storage.Put(KeyTasks, local))

	m := newTestManager(t, storage, server.URL)
	require.NoError(t, m.Refresh(context.Background()))

	// The offline task was pushed, then the list became server truth.
	server.mu.Lock()
	created := server.created
	server.mu.Unlock()
	assert.Equal(t, 1, created)

	tasks := m.Tasks()
	require.Len(t, tasks, 2)
	for _, task := range tasks {
		assert.Equal(t, SyncConfirmed, task.Sync)
	}
	assert.Equal(t, "from server", tasks[0].Text)
	assert.Equal(t, 1, m.Analytics().Syncs)
}

func TestRefreshRequiresSession(t *testing.T) {
	storage := newTestStorage(t)
	m := newTestManager(t, storage, "http://127.0.0.1:1")

	err := m.Refresh(context.Background())
	require.Error(t, err)
}

func TestLoginStartsSession(t *testing.T) {
	server := newStubServer(t)
	storage := newTestStorage(t)
	m := newTestManager(t, storage, server.URL)

	require.NoError(t, m.Login(context.Background(), "alice@example.com", "password"))
	session := m.Session()
	require.NotNil(t, session)
	assert.Equal(t, "alice", session.User.Username)

	// The session survives a restart.
	m2 := newTestManager(t, storage, server.URL)
	require.NotNil(t, m2.Session())

	require.NoError(t, m2.Logout())
	assert.Nil(t, m2.Session())
}

func TestSubmitReviewValidation(t *testing.T) {
	storage := newTestStorage(t)
	m := newTestManager(t, storage, "http://127.0.0.1:1")

	_, err := m.SubmitReview(context.Background(), "t1", 5, "nice")
	require.Error(t, err, "review without a session must fail")

	seedSession(t, storage)
	m = newTestManager(t, storage, "http://127.0.0.1:1")
	_, err = m.SubmitReview(context.Background(), "t1", 0, "")
	require.Error(t, err, "rating out of range must fail")
}

func TestLanguagePersistence(t *testing.T) {
	storage := newTestStorage(t)
	m := newTestManager(t, storage, "http://127.0.0.1:1")

	assert.Empty(t, m.Language())
	require.NoError(t, m.SetLanguage("id"))

	m2 := newTestManager(t, storage, "http://127.0.0.1:1")
	assert.Equal(t, "id", m2.Language())
}
