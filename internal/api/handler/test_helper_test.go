package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand/v2"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/martijn/homedash/internal/api/dto"
	"github.com/martijn/homedash/internal/api/middleware"
	"github.com/martijn/homedash/internal/core/service"
	"github.com/martijn/homedash/internal/core/telemetry"
	"github.com/martijn/homedash/internal/infrastructure/database"
	"github.com/martijn/homedash/internal/infrastructure/filestore"
	"github.com/martijn/homedash/internal/logging"
	"golang.org/x/crypto/bcrypt"
)

// testEnv holds all test dependencies
type testEnv struct {
	db          *database.DB
	router      *gin.Engine
	tokens      *service.TokenService
	avatars     *filestore.Local
	backgrounds *filestore.Local
}

// setupTestEnv creates a test environment with in-memory SQLite database
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := logging.Discard()
	database.SetMigrationLogger(logger)

	// Use in-memory SQLite database
	db, err := database.New(database.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	root := t.TempDir()
	avatars, err := filestore.NewLocal(filepath.Join(root, "avatars"))
	if err != nil {
		t.Fatalf("failed to create avatars dir: %v", err)
	}
	backgrounds, err := filestore.NewLocal(filepath.Join(root, "backgrounds"))
	if err != nil {
		t.Fatalf("failed to create backgrounds dir: %v", err)
	}

	tokens, err := service.NewTokenService("handler-test-secret", "HS256", 30*time.Minute)
	if err != nil {
		t.Fatalf("failed to create token service: %v", err)
	}

	// Create services
	userRepo := database.NewUserRepository(db)
	authService := service.NewAuthService(userRepo, service.NewCredentialStore(bcrypt.MinCost), tokens)
	userService := service.NewUserService(userRepo)
	uploadService := service.NewUploadService(userRepo, avatars, backgrounds, 1024, logger)

	// Create handlers
	authHandler := NewAuthHandler(authService)
	userHandler := NewUserHandler(userService, uploadService, 1024)
	telemetryHandler := NewTelemetryHandler(telemetry.NewGenerator(rand.NewPCG(7, 7)))

	// Setup gin router in test mode
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandlerMiddleware(logger))

	router.POST("/register", authHandler.Register)
	router.POST("/login", authHandler.Login)

	authMiddleware := middleware.AuthMiddleware(authService, logger)
	router.GET("/user/profile", authMiddleware, userHandler.Profile)
	router.PATCH("/user/settings/update", authMiddleware, userHandler.UpdateSettings)
	router.POST("/user/avatar", authMiddleware, userHandler.UploadAvatar)
	router.POST("/user/background", authMiddleware, userHandler.UploadBackground)
	router.GET("/metrics", authMiddleware, telemetryHandler.Metrics)
	router.GET("/dashboard-data", authMiddleware, telemetryHandler.Dashboard)
	router.POST("/devices/:id/toggle", authMiddleware, telemetryHandler.ToggleDevice)

	return &testEnv{
		db:          db,
		router:      router,
		tokens:      tokens,
		avatars:     avatars,
		backgrounds: backgrounds,
	}
}

// makeRequest performs a request with an optional JSON body and bearer token
func (env *testEnv) makeRequest(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

// upload posts content as the "file" form field
func (env *testEnv) upload(t *testing.T, path, filename string, content []byte, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, path, &buf)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

// registerAndLogin creates a user and returns a bearer token for it
func (env *testEnv) registerAndLogin(t *testing.T, username, email, password string) string {
	t.Helper()

	w := env.makeRequest(t, http.MethodPost, "/register", dto.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("register %s: status %d, body %s", username, w.Code, w.Body.String())
	}

	return env.login(t, username, password)
}

func (env *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()

	w := env.makeRequest(t, http.MethodPost, "/login", dto.LoginRequest{Username: username, Password: password}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: status %d, body %s", username, w.Code, w.Body.String())
	}
	return parseTokenResponse(t, w).AccessToken
}

func parseTokenResponse(t *testing.T, w *httptest.ResponseRecorder) dto.TokenResponse {
	t.Helper()

	var resp dto.TokenResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse token response: %v\nBody: %s", err, w.Body.String())
	}
	return resp
}

// parseUserResponse parses the response body into UserResponse
func parseUserResponse(t *testing.T, w *httptest.ResponseRecorder) dto.UserResponse {
	t.Helper()

	var resp dto.UserResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v\nBody: %s", err, w.Body.String())
	}
	return resp
}

// parseErrorResponse parses the response body into ErrorResponse
func parseErrorResponse(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()

	var resp dto.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, w.Body.String())
	}
	return resp
}

// ptr is a helper to create a pointer to a value
func ptr[T any](v T) *T {
	return &v
}
