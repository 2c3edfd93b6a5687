// Package postgres implements the store interfaces over a postgres database,
// so deployments that need persistence can swap it in without touching route
// logic.
package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"task-manager-go/internal/apperrors"
	"task-manager-go/internal/models"
	"task-manager-go/internal/store"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Users() store.UserStore { return (*userStore)(s) }

func (s *Store) Tasks() store.TaskStore { return (*taskStore)(s) }

func (s *Store) Reviews() store.ReviewStore { return (*reviewStore)(s) }

// CreateTables bootstraps the schema if it does not exist yet.
func (s *Store) CreateTables(ctx context.Context) error {
	query := `
CREATE TABLE IF NOT EXISTS users (
    id VARCHAR(36) PRIMARY KEY,
    username VARCHAR(255) NOT NULL UNIQUE,
    email VARCHAR(255) NOT NULL UNIQUE,
    password VARCHAR(255) NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tasks (
    id VARCHAR(36) PRIMARY KEY,
    user_id VARCHAR(36) NOT NULL REFERENCES users (id),
    text TEXT NOT NULL,
    completed BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS reviews (
    id VARCHAR(36) PRIMARY KEY,
    user_id VARCHAR(36) NOT NULL REFERENCES users (id),
    task_id VARCHAR(36) NOT NULL REFERENCES tasks (id) ON DELETE CASCADE,
    rating INT NOT NULL,
    comment TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (user_id, task_id)
);
`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

// DropTables removes the schema. Used by tests to leave a clean database.
func (s *Store) DropTables(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
    DROP TABLE IF EXISTS reviews;
    DROP TABLE IF EXISTS tasks;
    DROP TABLE IF EXISTS users;
    `)
	return err
}

func isUniqueViolation(err error) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code == "23505"
}

// ----- users ----- //

type userStore Store

func (s *userStore) Create(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, username, email, password, created_at) VALUES ($1, $2, $3, $4, $5)",
		u.ID, u.Username, u.Email, u.Password, u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("User already exists")
		}
		return err
	}
	return nil
}

func (s *userStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.get(ctx, "email = $1", email)
}

func (s *userStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.get(ctx, "id = $1", id)
}

func (s *userStore) get(ctx context.Context, where string, arg any) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx,
		"SELECT id, username, email, password, created_at FROM users WHERE "+where, arg).
		Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("User not found")
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ----- tasks ----- //

type taskStore Store

const taskColumns = "id, user_id, text, completed, created_at, updated_at"

func scanTask(row interface{ Scan(...any) error }) (*models.Task, error) {
	var t models.Task
	err := row.Scan(&t.ID, &t.UserID, &t.Text, &t.Completed, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *taskStore) List(ctx context.Context, ownerID string) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE user_id = $1 ORDER BY created_at, id", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *taskStore) Get(ctx context.Context, ownerID, id string) (*models.Task, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = $1 AND user_id = $2", id, ownerID)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("Task not found")
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *taskStore) Create(ctx context.Context, ownerID, text string) (*models.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.Validation("Task text is required")
	}
	now := time.Now()
	t := &models.Task{
		ID:        uuid.NewString(),
		UserID:    ownerID,
		Text:      text,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO tasks (id, user_id, text, completed, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)",
		t.ID, t.UserID, t.Text, t.Completed, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *taskStore) Update(ctx context.Context, ownerID, id string, text *string, completed *bool) (*models.Task, error) {
	if text != nil && strings.TrimSpace(*text) == "" {
		return nil, apperrors.Validation("Task text cannot be empty")
	}
	var trimmed *string
	if text != nil {
		v := strings.TrimSpace(*text)
		trimmed = &v
	}
	row := s.db.QueryRowContext(ctx, `
        UPDATE tasks
        SET text = COALESCE($1, text),
            completed = COALESCE($2, completed),
            updated_at = $3
        WHERE id = $4 AND user_id = $5
        RETURNING `+taskColumns,
		trimmed, completed, time.Now(), id, ownerID)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("Task not found")
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *taskStore) Delete(ctx context.Context, ownerID, id string) (*models.Task, error) {
	row := s.db.QueryRowContext(ctx,
		"DELETE FROM tasks WHERE id = $1 AND user_id = $2 RETURNING "+taskColumns, id, ownerID)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("Task not found")
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *taskStore) Clear(ctx context.Context, ownerID string) (int, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE user_id = $1", ownerID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// ----- reviews ----- //

type reviewStore Store

func (s *reviewStore) ListForTask(ctx context.Context, taskID string) ([]models.Review, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, task_id, rating, comment, created_at FROM reviews WHERE task_id = $1 ORDER BY created_at, id", taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		var r models.Review
		if err := rows.Scan(&r.ID, &r.UserID, &r.TaskID, &r.Rating, &r.Comment, &r.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

func (s *reviewStore) Create(ctx context.Context, userID, taskID string, rating int, comment string) (*models.Review, error) {
	if taskID == "" || rating < 1 || rating > 5 {
		return nil, apperrors.Validation("Task ID and rating (1-5) are required")
	}

	var owner string
	err := s.db.QueryRowContext(ctx, "SELECT user_id FROM tasks WHERE id = $1", taskID).Scan(&owner)
	if err == sql.ErrNoRows || (err == nil && owner != userID) {
		return nil, apperrors.NotFound("Task not found")
	}
	if err != nil {
		return nil, err
	}

	r := &models.Review{
		ID:        uuid.NewString(),
		UserID:    userID,
		TaskID:    taskID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now(),
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO reviews (id, user_id, task_id, rating, comment, created_at) VALUES ($1, $2, $3, $4, $5, $6)",
		r.ID, r.UserID, r.TaskID, r.Rating, r.Comment, r.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict("You have already reviewed this task")
		}
		return nil, err
	}
	return r, nil
}
