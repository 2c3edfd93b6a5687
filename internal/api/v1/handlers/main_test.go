package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	v1 "task-manager-go/internal/api/v1"
	"task-manager-go/internal/api/v1/handlers"
	"task-manager-go/internal/auth"
	"task-manager-go/internal/store/memory"
	"task-manager-go/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

func TestMain(m *testing.M) {
	logger.InitLoggers()
	defer logger.SyncLoggers()
	os.Exit(m.Run())
}

// newTestApp builds the app against a fresh in-memory store, no redis, no
// websocket hub.
func newTestApp() *fiber.App {
	st := memory.New()
	authSvc := auth.NewService(st.Users(), []byte("test-secret"), 24*time.Hour)
	h := handlers.New(authSvc, st.Tasks(), st.Reviews())

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
	})
	v1.RegisterRoutes(app, h)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (int, map[string]interface{}) {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("Error encoding request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Error decoding %s %s response: %v", method, path, err)
	}
	return resp.StatusCode, result
}

// registerUser registers a fresh user and returns their token.
func registerUser(t *testing.T, app *fiber.App, username string) string {
	t.Helper()
	status, result := doJSON(t, app, "POST", "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "pw123456",
	})
	if status != http.StatusCreated {
		t.Fatalf("Expected status 201 for register, got %d (%v)", status, result)
	}
	data, ok := result["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected data field in register response")
	}
	token, _ := data["token"].(string)
	if token == "" {
		t.Fatalf("Expected token in register response")
	}
	return token
}

// createTask creates a task and returns its id.
func createTask(t *testing.T, app *fiber.App, token, text string) string {
	t.Helper()
	status, result := doJSON(t, app, "POST", "/api/tasks", token, map[string]string{"text": text})
	if status != http.StatusCreated {
		t.Fatalf("Expected status 201 for create task, got %d (%v)", status, result)
	}
	data := result["data"].(map[string]interface{})
	id, _ := data["id"].(string)
	if id == "" {
		t.Fatalf("Expected task id in response")
	}
	return id
}

func errString(result map[string]interface{}) string {
	s, _ := result["error"].(string)
	return s
}
