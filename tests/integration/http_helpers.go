package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/BradenHooton/vigil/internal/auth"
	"github.com/BradenHooton/vigil/internal/background"
	"github.com/BradenHooton/vigil/internal/database"
	"github.com/BradenHooton/vigil/internal/handlers"
	middlewareCustom "github.com/BradenHooton/vigil/internal/middleware"
	"github.com/BradenHooton/vigil/internal/models"
	"github.com/BradenHooton/vigil/internal/routes"
	"github.com/BradenHooton/vigil/internal/services"
	"github.com/BradenHooton/vigil/pkg/breach"
	"github.com/BradenHooton/vigil/pkg/email"
)

const testServiceTokenSecret = "integration-test-secret-32-chars!"

// RecordingAlerter captures alerts for test assertions
type RecordingAlerter struct {
	mu    sync.Mutex
	Links []*models.MultiAccountLink
	Bans  []*models.BanRecord
}

func (a *RecordingAlerter) MultiAccountDetected(ctx context.Context, link *models.MultiAccountLink) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Links = append(a.Links, link)
}

func (a *RecordingAlerter) PermanentBan(ctx context.Context, ban *models.BanRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Bans = append(a.Bans, ban)
}

// LinkAlertCount returns how many link alerts fired so far
func (a *RecordingAlerter) LinkAlertCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.Links)
}

// stubBreach always reports clean; breach lookups have their own unit tests
// against a fake range endpoint.
type stubBreach struct{}

func (stubBreach) Check(ctx context.Context, pw string) breach.Result {
	return breach.Result{}
}

// TestServer wraps httptest.Server with database and all dependencies
type TestServer struct {
	Server       *httptest.Server
	DB           *database.DB
	Alerter      *RecordingAlerter
	Correlator   *background.Correlator
	TokenManager *auth.TokenManager

	workerCancel context.CancelFunc
	logger       *slog.Logger
}

// NewTestServer initializes a complete HTTP server against a real database.
// Redis is absent so ban-status reads hit the store directly.
func NewTestServer(db *database.DB) *TestServer {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	userRepo, banRepo, attemptRepo, fingerprintRepo, linkRepo, eventRepo := InitializeRepositories(db)

	alerter := &RecordingAlerter{}

	eventService := services.NewSecurityEventService(eventRepo, logger)
	banService := services.NewBanService(banRepo, userRepo, eventService, nil, alerter, logger)
	correlationService := services.NewCorrelationService(
		attemptRepo, fingerprintRepo, linkRepo, eventService, alerter, logger)

	correlator := background.NewCorrelator(correlationService, logger, 64, 1)

	anonymizer := services.NewAnonymizer("integration-test-ip-hash-secret")
	recorderService := services.NewRecorderService(
		attemptRepo, fingerprintRepo, correlator, anonymizer, logger)

	emailOpts := email.DefaultOptions()
	emailOpts.CheckMX = false

	tokenManager := auth.NewTokenManager(testServiceTokenSecret, time.Hour)

	credentialsHandler := handlers.NewCredentialsHandler(stubBreach{}, emailOpts)
	loginsHandler := handlers.NewLoginsHandler(recorderService)
	usersHandler := handlers.NewUsersHandler(banService)
	adminHandler := handlers.NewAdminHandler(banService, correlationService, eventService)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(middlewareCustom.ClientIP(nil))
	r.Use(middlewareCustom.SecurityHeaders("test"))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(r, tokenManager, credentialsHandler, loginsHandler, usersHandler, adminHandler)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	correlator.Start(workerCtx)

	server := httptest.NewServer(r)

	return &TestServer{
		Server:       server,
		DB:           db,
		Alerter:      alerter,
		Correlator:   correlator,
		TokenManager: tokenManager,
		workerCancel: workerCancel,
		logger:       logger,
	}
}

// Close shuts down the test server and its workers
func (ts *TestServer) Close() {
	if ts.Server != nil {
		ts.Server.Close()
	}
	if ts.workerCancel != nil {
		ts.workerCancel()
		ts.Correlator.Wait()
	}
}

// ConsumerToken issues a service token with the consumer role
func (ts *TestServer) ConsumerToken() (string, error) {
	return ts.TokenManager.GenerateToken("auth-gateway", auth.RoleConsumer)
}

// AdminToken issues a service token with the admin role
func (ts *TestServer) AdminToken() (string, error) {
	return ts.TokenManager.GenerateToken("trust-safety-console", auth.RoleAdmin)
}

// Request makes an HTTP request to the test server
func (ts *TestServer) Request(method, path string, body interface{}, headers map[string]string) (*http.Response, error) {
	url := ts.Server.URL + path

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	return http.DefaultClient.Do(req)
}

// RequestWithToken makes a request authenticated with a service token
func (ts *TestServer) RequestWithToken(method, path, token string, body interface{}) (*http.Response, error) {
	headers := map[string]string{
		"Authorization": "Bearer " + token,
	}
	return ts.Request(method, path, body, headers)
}

// ParseJSONResponse parses JSON response body into target struct
func ParseJSONResponse(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(target)
}

// GetErrorMessage extracts error message from error response
func GetErrorMessage(resp *http.Response) (string, error) {
	defer resp.Body.Close()
	var errResp map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		return "", err
	}
	if msg, ok := errResp["message"].(string); ok {
		return msg, nil
	}
	return "", nil
}
