// Package memory implements the store interfaces over process-local maps.
// Data does not survive a restart; that is the deployment default and an
// accepted limitation of the service.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"task-manager-go/internal/apperrors"
	"task-manager-go/internal/models"
	"task-manager-go/internal/store"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Store holds users, tasks and reviews keyed by id, with insertion order kept
// per collection. Fiber serves requests on concurrent goroutines, so every
// operation takes the mutex. The Users/Tasks/Reviews views share it.
type Store struct {
	mu        sync.RWMutex
	users     map[string]*models.User
	userOrder []string
	tasks     map[string]*models.Task
	taskOrder []string
	reviews   map[string]*models.Review
	revOrder  []string
}

func New() *Store {
	return &Store{
		users:   make(map[string]*models.User),
		tasks:   make(map[string]*models.Task),
		reviews: make(map[string]*models.Review),
	}
}

func (s *Store) Users() store.UserStore { return (*userStore)(s) }

func (s *Store) Tasks() store.TaskStore { return (*taskStore)(s) }

func (s *Store) Reviews() store.ReviewStore { return (*reviewStore)(s) }

func newID() string {
	return uuid.NewString()
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// ----- users ----- //

type userStore Store

func (s *userStore) Create(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.userOrder {
		existing := s.users[id]
		if existing.Email == u.Email || existing.Username == u.Username {
			return apperrors.Conflict("User already exists")
		}
	}
	if u.ID == "" {
		u.ID = newID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	cp := *u
	s.users[cp.ID] = &cp
	s.userOrder = append(s.userOrder, cp.ID)
	return nil
}

func (s *userStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.userOrder {
		if s.users[id].Email == email {
			cp := *s.users[id]
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("User not found")
}

func (s *userStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.NotFound("User not found")
	}
	cp := *u
	return &cp, nil
}

// ----- tasks ----- //

type taskStore Store

func (s *taskStore) List(ctx context.Context, ownerID string) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := []models.Task{}
	for _, id := range s.taskOrder {
		if t := s.tasks[id]; t.UserID == ownerID {
			tasks = append(tasks, *t)
		}
	}
	return tasks, nil
}

func (s *taskStore) Get(ctx context.Context, ownerID, id string) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok || t.UserID != ownerID {
		return nil, apperrors.NotFound("Task not found")
	}
	cp := *t
	return &cp, nil
}

func (s *taskStore) Create(ctx context.Context, ownerID, text string) (*models.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.Validation("Task text is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	t := &models.Task{
		ID:        newID(),
		UserID:    ownerID,
		Text:      text,
		Completed: false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.tasks[t.ID] = t
	s.taskOrder = append(s.taskOrder, t.ID)
	cp := *t
	return &cp, nil
}

func (s *taskStore) Update(ctx context.Context, ownerID, id string, text *string, completed *bool) (*models.Task, error) {
	if text != nil && strings.TrimSpace(*text) == "" {
		return nil, apperrors.Validation("Task text cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok || t.UserID != ownerID {
		return nil, apperrors.NotFound("Task not found")
	}
	if text != nil {
		t.Text = strings.TrimSpace(*text)
	}
	if completed != nil {
		t.Completed = *completed
	}
	t.UpdatedAt = time.Now()
	cp := *t
	return &cp, nil
}

func (s *taskStore) Delete(ctx context.Context, ownerID, id string) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok || t.UserID != ownerID {
		return nil, apperrors.NotFound("Task not found")
	}
	delete(s.tasks, id)
	s.taskOrder = removeID(s.taskOrder, id)
	return t, nil
}

func (s *taskStore) Clear(ctx context.Context, ownerID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	kept := s.taskOrder[:0]
	for _, id := range s.taskOrder {
		if s.tasks[id].UserID == ownerID {
			delete(s.tasks, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	s.taskOrder = kept
	return removed, nil
}

// ----- reviews ----- //

type reviewStore Store

func (s *reviewStore) ListForTask(ctx context.Context, taskID string) ([]models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reviews := []models.Review{}
	for _, id := range s.revOrder {
		if r := s.reviews[id]; r.TaskID == taskID {
			reviews = append(reviews, *r)
		}
	}
	return reviews, nil
}

func (s *reviewStore) Create(ctx context.Context, userID, taskID string, rating int, comment string) (*models.Review, error) {
	if taskID == "" || rating < 1 || rating > 5 {
		return nil, apperrors.Validation("Task ID and rating (1-5) are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[taskID]
	if !ok || t.UserID != userID {
		return nil, apperrors.NotFound("Task not found")
	}
	for _, id := range s.revOrder {
		if r := s.reviews[id]; r.TaskID == taskID && r.UserID == userID {
			return nil, apperrors.Conflict("You have already reviewed this task")
		}
	}
	r := &models.Review{
		ID:        newID(),
		UserID:    userID,
		TaskID:    taskID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now(),
	}
	s.reviews[r.ID] = r
	s.revOrder = append(s.revOrder, r.ID)
	cp := *r
	return &cp, nil
}

// SeedDemo inserts the demo user ("demo@example.com" / "password") with a
// welcome task and a sample review, mirroring a fresh deployment.
func (s *Store) SeedDemo() error {
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	ctx := context.Background()
	demo := &models.User{Username: "demo", Email: "demo@example.com", Password: string(hash)}
	if err := s.Users().Create(ctx, demo); err != nil {
		return err
	}
	task, err := s.Tasks().Create(ctx, demo.ID, "Welcome to Task Manager API!")
	if err != nil {
		return err
	}
	_, err = s.Reviews().Create(ctx, demo.ID, task.ID, 5, "Great task management app!")
	return err
}
