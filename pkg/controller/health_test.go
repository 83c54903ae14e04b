package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yttools/transcript-api/pkg/config"
	"github.com/yttools/transcript-api/pkg/server"
)

func newTestEngine(t *testing.T, constructor server.Constructor, raw config.RawConfig) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctrl, err := constructor(raw, server.ControllerContext{})
	if err != nil {
		t.Fatalf("Failed to construct controller: %v", err)
	}
	t.Cleanup(func() {
		if err := ctrl.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})

	engine := gin.New()
	if err := ctrl.Bind(engine); err != nil {
		t.Fatalf("Bind failed: %v", err)
	}
	return engine
}

func getJSON(t *testing.T, engine *gin.Engine, path string, target any) *httptest.ResponseRecorder {
	t.Helper()
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, path, nil)
	engine.ServeHTTP(recorder, request)

	if target != nil && recorder.Code == http.StatusOK {
		if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
			t.Fatalf("Failed to parse response from %s: %v", path, err)
		}
	}
	return recorder
}

// TestHealthController_Root tests the basic liveness endpoint
func TestHealthController_Root(t *testing.T) {
	engine := newTestEngine(t, NewHealthController, nil)

	var response HealthResponse
	recorder := getJSON(t, engine, "/api", &response)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", recorder.Code)
	}
	if response.Status != "healthy" {
		t.Errorf("Expected status 'healthy', got '%s'", response.Status)
	}
	if response.Message != "YouTube Transcript API is running" {
		t.Errorf("Unexpected message: '%s'", response.Message)
	}
}

// TestHealthController_Health tests the detailed health endpoint
func TestHealthController_Health(t *testing.T) {
	engine := newTestEngine(t, NewHealthController, nil)

	var response HealthResponse
	recorder := getJSON(t, engine, "/api/health", &response)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", recorder.Code)
	}
	if response.Status != "healthy" {
		t.Errorf("Expected status 'healthy', got '%s'", response.Status)
	}
	if response.Message != "Service is running. YouTube Transcript API ready." {
		t.Errorf("Unexpected message: '%s'", response.Message)
	}
}

// TestHealthController_CustomPath tests mounting under a configured path
func TestHealthController_CustomPath(t *testing.T) {
	engine := newTestEngine(t, NewHealthController, config.RawConfig("path: /v2\n"))

	recorder := getJSON(t, engine, "/v2/health", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200 on custom path, got %d", recorder.Code)
	}

	recorder = getJSON(t, engine, "/api/health", nil)
	if recorder.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 on default path, got %d", recorder.Code)
	}
}
