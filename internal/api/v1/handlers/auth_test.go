package handlers_test

import (
	"net/http"
	"testing"
)

func TestRegister(t *testing.T) {
	app := newTestApp()

	status, result := doJSON(t, app, "POST", "/api/auth/register", "", map[string]string{
		"username": "alice",
		"email":    "a@x.com",
		"password": "pw123456",
	})
	if status != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d (%v)", status, result)
	}
	data, ok := result["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected data field in response")
	}
	if data["token"] == nil {
		t.Errorf("Expected token in register response")
	}
	user, ok := data["user"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected user in register response")
	}
	if user["username"] != "alice" {
		t.Errorf("Expected username alice, got %v", user["username"])
	}
	if _, leaked := user["password"]; leaked {
		t.Errorf("Password hash must not appear in responses")
	}
}

func TestRegisterMissingFields(t *testing.T) {
	app := newTestApp()

	status, _ := doJSON(t, app, "POST", "/api/auth/register", "", map[string]string{
		"username": "alice",
	})
	if status != http.StatusBadRequest {
		t.Errorf("Expected status 400 for missing fields, got %d", status)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	app := newTestApp()
	registerUser(t, app, "alice")

	status, result := doJSON(t, app, "POST", "/api/auth/register", "", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "pw123456",
	})
	if status != http.StatusBadRequest {
		t.Errorf("Expected status 400 for duplicate register, got %d", status)
	}
	if errString(result) != "User already exists" {
		t.Errorf("Unexpected error message: %q", errString(result))
	}
}

func TestLogin(t *testing.T) {
	app := newTestApp()
	registerUser(t, app, "alice")

	status, result := doJSON(t, app, "POST", "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "pw123456",
	})
	if status != http.StatusOK {
		t.Fatalf("Expected status 200, got %d (%v)", status, result)
	}
	data, ok := result["data"].(map[string]interface{})
	if !ok || data["token"] == nil {
		t.Fatalf("Expected token in login response")
	}
}

func TestLoginFailuresShareMessage(t *testing.T) {
	app := newTestApp()
	registerUser(t, app, "alice")

	statusWrong, wrong := doJSON(t, app, "POST", "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrongpass",
	})
	statusUnknown, unknown := doJSON(t, app, "POST", "/api/auth/login", "", map[string]string{
		"email":    "ghost@example.com",
		"password": "pw123456",
	})

	if statusWrong != http.StatusUnauthorized || statusUnknown != http.StatusUnauthorized {
		t.Fatalf("Expected status 401 for both failures, got %d and %d", statusWrong, statusUnknown)
	}
	if errString(wrong) != errString(unknown) {
		t.Errorf("Login failures must not reveal whether the email exists: %q vs %q",
			errString(wrong), errString(unknown))
	}
}
