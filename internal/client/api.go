package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"task-manager-go/internal/models"
)

// Session is the authenticated identity persisted under the "user" key.
type Session struct {
	User  models.PublicUser `json:"user"`
	Token string            `json:"token"`
}

// APIClient talks to the REST API and decodes the uniform envelope.
type APIClient struct {
	baseURL string
	http    *http.Client
	token   string
}

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *APIClient) SetToken(token string) {
	c.token = token
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Count   int             `json:"count"`
}

func (c *APIClient) do(ctx context.Context, method, path string, body any, out any) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decoding response from %s %s: %w", method, path, err)
	}
	if !env.Success {
		return fmt.Errorf("server: %s", env.Error)
	}
	if out != nil && env.Data != nil {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}

func (c *APIClient) Register(ctx context.Context, username, email, password string) (*Session, error) {
	var session Session
	err := c.do(ctx, http.MethodPost, "/api/auth/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *APIClient) Login(ctx context.Context, email, password string) (*Session, error) {
	var session Session
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *APIClient) ListTasks(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *APIClient) CreateTask(ctx context.Context, text string) (*models.Task, error) {
	var task models.Task
	err := c.do(ctx, http.MethodPost, "/api/tasks", map[string]string{"text": text}, &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *APIClient) UpdateTask(ctx context.Context, id string, text *string, completed *bool) (*models.Task, error) {
	body := map[string]any{}
	if text != nil {
		body["text"] = *text
	}
	if completed != nil {
		body["completed"] = *completed
	}
	var task models.Task
	if err := c.do(ctx, http.MethodPut, "/api/tasks/"+id, body, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *APIClient) DeleteTask(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodDelete, "/api/tasks/"+id, nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *APIClient) ClearTasks(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks", nil, nil)
}

func (c *APIClient) ListReviews(ctx context.Context, taskID string) ([]models.Review, error) {
	var reviews []models.Review
	if err := c.do(ctx, http.MethodGet, "/api/reviews/"+taskID, nil, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (c *APIClient) CreateReview(ctx context.Context, taskID string, rating int, comment string) (*models.Review, error) {
	var review models.Review
	err := c.do(ctx, http.MethodPost, "/api/reviews", map[string]any{
		"taskId":  taskID,
		"rating":  rating,
		"comment": comment,
	}, &review)
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (c *APIClient) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", nil, nil)
}
