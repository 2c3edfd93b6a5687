// Package store defines storage interfaces implemented by concrete backends.
package store

import (
	"context"

	"task-manager-go/internal/models"
)

// UserStore provides access to registered users.
type UserStore interface {
	// Create inserts a new user. Returns apperrors.ErrConflict if the email
	// or username is already taken.
	Create(ctx context.Context, u *models.User) error
	// GetByEmail loads a user by email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// TaskStore provides owner-scoped CRUD access to tasks.
// A task owned by another user is indistinguishable from a missing one.
type TaskStore interface {
	// List returns the owner's tasks in insertion order.
	List(ctx context.Context, ownerID string) ([]models.Task, error)
	// Get returns a single task by ID.
	Get(ctx context.Context, ownerID, id string) (*models.Task, error)
	// Create trims text, rejects whitespace-only input and appends a new task.
	Create(ctx context.Context, ownerID, text string) (*models.Task, error)
	// Update applies only the supplied fields and refreshes the update timestamp.
	Update(ctx context.Context, ownerID, id string, text *string, completed *bool) (*models.Task, error)
	// Delete removes a task and returns the removed record.
	Delete(ctx context.Context, ownerID, id string) (*models.Task, error)
	// Clear removes all of the owner's tasks and returns the count removed.
	Clear(ctx context.Context, ownerID string) (int, error)
}

// ReviewStore provides access to task reviews.
type ReviewStore interface {
	// ListForTask returns all reviews for a task. Unauthenticated read.
	ListForTask(ctx context.Context, taskID string) ([]models.Review, error)
	// Create validates the rating range, checks that the task exists and is
	// owned by the reviewer, rejects duplicates and appends a new review.
	Create(ctx context.Context, userID, taskID string, rating int, comment string) (*models.Review, error)
}
