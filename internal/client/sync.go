package client

import (
	"context"
	"strings"
	"sync"

	"task-manager-go/internal/apperrors"
	"task-manager-go/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SyncStatus tracks where a task lives relative to the server.
type SyncStatus string

const (
	// SyncLocal: only on this device, or a failed mirror waiting for retry.
	SyncLocal SyncStatus = "local"
	// SyncPending: server call in flight.
	SyncPending SyncStatus = "pending"
	// SyncConfirmed: server-confirmed id merged in.
	SyncConfirmed SyncStatus = "synced"
)

// LocalTask is a task plus its sync status as persisted on the device.
type LocalTask struct {
	models.Task
	Sync SyncStatus `json:"sync"`
}

// Manager owns the device's task list. Every mutation is applied locally and
// saved first, then mirrored to the server in a single best-effort attempt.
// A failed mirror never rolls back the local change; the task falls back to
// SyncLocal and is pushed again on the next Refresh.
type Manager struct {
	mu        sync.Mutex
	storage   *Storage
	api       *APIClient
	log       *zap.Logger
	tasks     []LocalTask
	session   *Session
	analytics Analytics
	language  string
}

// NewManager loads each persisted domain from storage independently.
func NewManager(storage *Storage, api *APIClient, log *zap.Logger) (*Manager, error) {
	m := &Manager{storage: storage, api: api, log: log, tasks: []LocalTask{}}

	if _, err := storage.Get(KeyTasks, &m.tasks); err != nil {
		return nil, err
	}
	var session Session
	if ok, err := storage.Get(KeyUser, &session); err != nil {
		return nil, err
	} else if ok {
		m.session = &session
		api.SetToken(session.Token)
	}
	if _, err := storage.Get(KeyAnalytics, &m.analytics); err != nil {
		return nil, err
	}
	if _, err := storage.Get(KeyLanguage, &m.language); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) Session() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	cp := *m.session
	return &cp
}

func (m *Manager) Tasks() []LocalTask {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]LocalTask, len(m.tasks))
	copy(out, m.tasks)
	return out
}

func (m *Manager) Analytics() Analytics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.analytics
}

// Register is an explicit user action: failures are returned to the caller.
func (m *Manager) Register(ctx context.Context, username, email, password string) error {
	session, err := m.api.Register(ctx, username, email, password)
	if err != nil {
		return err
	}
	return m.startSession(ctx, session)
}

// Login is an explicit user action: failures are returned to the caller.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	session, err := m.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return m.startSession(ctx, session)
}

func (m *Manager) startSession(ctx context.Context, session *Session) error {
	m.mu.Lock()
	m.session = session
	m.api.SetToken(session.Token)
	err := m.storage.Put(KeyUser, session)
	m.mu.Unlock()
	if err != nil {
		return err
	}
	// Best-effort: pull server truth right away.
	if err := m.Refresh(ctx); err != nil {
		m.log.Warn("Initial refresh failed", zap.Error(err))
	}
	return nil
}

// Logout drops the session. Local tasks stay on the device.
func (m *Manager) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	m.api.SetToken("")
	return m.storage.Delete(KeyUser)
}

// AddTask appends a task locally, then mirrors it. On a confirmed mirror the
// server-assigned id replaces the provisional one.
func (m *Manager) AddTask(ctx context.Context, text string) (*LocalTask, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.Validation("Task text is required")
	}

	m.mu.Lock()
	task := LocalTask{Task: models.Task{ID: uuid.NewString(), Text: text}, Sync: SyncLocal}
	if m.session != nil {
		task.UserID = m.session.User.ID
	}
	m.tasks = append(m.tasks, task)
	m.analytics.TasksCreated++
	m.saveLocked()
	online := m.session != nil
	m.mu.Unlock()

	if online {
		m.setStatus(task.ID, SyncPending)
		remote, err := m.api.CreateTask(ctx, text)
		m.mu.Lock()
		if err != nil {
			m.log.Warn("Task mirror failed", zap.String("taskID", task.ID), zap.Error(err))
			m.replace(task.ID, func(t *LocalTask) { t.Sync = SyncLocal })
		} else {
			m.replace(task.ID, func(t *LocalTask) {
				t.Task = *remote
				t.Sync = SyncConfirmed
			})
			task = LocalTask{Task: *remote, Sync: SyncConfirmed}
		}
		m.saveLocked()
		m.mu.Unlock()
	}
	return &task, nil
}

// ToggleTask flips the completed flag locally, then mirrors the change for
// server-confirmed tasks.
func (m *Manager) ToggleTask(ctx context.Context, id string) (*LocalTask, error) {
	m.mu.Lock()
	t := m.find(id)
	if t == nil {
		m.mu.Unlock()
		return nil, apperrors.NotFound("Task not found")
	}
	t.Completed = !t.Completed
	if t.Completed {
		m.analytics.TasksCompleted++
	}
	completed := t.Completed
	confirmed := t.Sync == SyncConfirmed
	m.saveLocked()
	online := m.session != nil
	cp := *t
	m.mu.Unlock()

	if online && confirmed {
		m.setStatus(id, SyncPending)
		remote, err := m.api.UpdateTask(ctx, id, nil, &completed)
		m.mu.Lock()
		if err != nil {
			m.log.Warn("Task mirror failed", zap.String("taskID", id), zap.Error(err))
			m.replace(id, func(t *LocalTask) { t.Sync = SyncLocal })
		} else {
			m.replace(id, func(t *LocalTask) {
				t.Task = *remote
				t.Sync = SyncConfirmed
			})
			cp = LocalTask{Task: *remote, Sync: SyncConfirmed}
		}
		m.saveLocked()
		m.mu.Unlock()
	}
	return &cp, nil
}

// DeleteTask removes the task locally, then mirrors the delete for
// server-confirmed tasks.
func (m *Manager) DeleteTask(ctx context.Context, id string) error {
	m.mu.Lock()
	t := m.find(id)
	if t == nil {
		m.mu.Unlock()
		return apperrors.NotFound("Task not found")
	}
	confirmed := t.Sync == SyncConfirmed
	m.remove(id)
	m.analytics.TasksDeleted++
	m.saveLocked()
	online := m.session != nil
	m.mu.Unlock()

	if online && confirmed {
		if _, err := m.api.DeleteTask(ctx, id); err != nil {
			m.log.Warn("Task delete mirror failed", zap.String("taskID", id), zap.Error(err))
		}
	}
	return nil
}

// ClearTasks empties the local list, then mirrors the clear.
func (m *Manager) ClearTasks(ctx context.Context) error {
	m.mu.Lock()
	m.analytics.TasksDeleted += len(m.tasks)
	m.tasks = []LocalTask{}
	m.saveLocked()
	online := m.session != nil
	m.mu.Unlock()

	if online {
		if err := m.api.ClearTasks(ctx); err != nil {
			m.log.Warn("Clear mirror failed", zap.Error(err))
		}
	}
	return nil
}

// Refresh pushes tasks still marked local to the server, then overwrites the
// local list with server truth. Requires a session.
func (m *Manager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	if m.session == nil {
		m.mu.Unlock()
		return apperrors.Auth("Not logged in")
	}
	var pending []LocalTask
	for _, t := range m.tasks {
		if t.Sync == SyncLocal {
			pending = append(pending, t)
		}
	}
	m.mu.Unlock()

	for _, t := range pending {
		if _, err := m.api.CreateTask(ctx, t.Text); err != nil {
			m.log.Warn("Push of local task failed", zap.String("taskID", t.ID), zap.Error(err))
		}
	}

	remote, err := m.api.ListTasks(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = make([]LocalTask, 0, len(remote))
	for _, t := range remote {
		m.tasks = append(m.tasks, LocalTask{Task: t, Sync: SyncConfirmed})
	}
	m.analytics.Syncs++
	m.saveLocked()
	return nil
}

// SubmitReview is an explicit user action: failures are returned to the caller.
func (m *Manager) SubmitReview(ctx context.Context, taskID string, rating int, comment string) (*models.Review, error) {
	if m.Session() == nil {
		return nil, apperrors.Auth("Not logged in")
	}
	if rating < 1 || rating > 5 {
		return nil, apperrors.Validation("Task ID and rating (1-5) are required")
	}
	return m.api.CreateReview(ctx, taskID, rating, comment)
}

func (m *Manager) Language() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.language
}

func (m *Manager) SetLanguage(code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.language = code
	return m.storage.Put(KeyLanguage, code)
}

// ----- internals, caller holds the lock ----- //

func (m *Manager) find(id string) *LocalTask {
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			return &m.tasks[i]
		}
	}
	return nil
}

func (m *Manager) replace(id string, fn func(*LocalTask)) {
	if t := m.find(id); t != nil {
		fn(t)
	}
}

func (m *Manager) remove(id string) {
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
			return
		}
	}
}

func (m *Manager) setStatus(id string, status SyncStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replace(id, func(t *LocalTask) { t.Sync = status })
}

// saveLocked persists the task list. Storage failures are logged, not
// surfaced: the in-memory state is still the source of truth for the UI.
func (m *Manager) saveLocked() {
	if err := m.storage.Put(KeyTasks, m.tasks); err != nil {
		m.log.Error("Error saving tasks", zap.Error(err))
	}
	if err := m.storage.Put(KeyAnalytics, m.analytics); err != nil {
		m.log.Error("Error saving analytics", zap.Error(err))
	}
}
