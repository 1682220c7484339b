package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"timeguard"
	"timeguard/internal/models"
	"timeguard/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

// mockOperators accepts the tokens listed in sessions.
type mockOperators struct {
	mu sync.Mutex

	registerID  int
	registerErr error
	token       string
	signInErr   error
	sessions    map[string]models.Session

	lastRegister struct {
		name, password string
		role           models.Role
	}
	lastSignIn    string
	lastAuthToken string
}

const (
	controllerToken = "controller-token"
	observerToken   = "observer-token"
)

// newMockOperators knows a controller and an observer token.
func newMockOperators() *mockOperators {
	return &mockOperators{sessions: map[string]models.Session{
		controllerToken: {OperatorID: 1, Name: "ops", Role: models.RoleController},
		observerToken:   {OperatorID: 2, Name: "watcher", Role: models.RoleObserver},
	}}
}

func (m *mockOperators) Register(ctx context.Context, name, password string, role models.Role) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastRegister.name, m.lastRegister.password, m.lastRegister.role = name, password, role
	return m.registerID, m.registerErr
}

func (m *mockOperators) SignIn(ctx context.Context, name, password string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastSignIn = name
	return m.token, m.signInErr
}

func (m *mockOperators) Authenticate(token string) (models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastAuthToken = token
	sess, ok := m.sessions[token]
	if !ok {
		return models.Session{}, service.ErrInvalidToken
	}
	return sess, nil
}

type mockGuard struct {
	state    models.GuardState
	stats    models.GuardStats
	signals  []timeguard.TimeSignalKind
	visCalls []timeguard.VisibilityState
	scrCalls []timeguard.ScreenPowerState
}

func (m *mockGuard) State(ctx context.Context) models.GuardState { return m.state }

func (m *mockGuard) SetVisibility(ctx context.Context, v timeguard.VisibilityState) {
	m.visCalls = append(m.visCalls, v)
	m.state.Visibility = v.String()
}

func (m *mockGuard) SetScreenPower(ctx context.Context, s timeguard.ScreenPowerState) {
	m.scrCalls = append(m.scrCalls, s)
	m.state.ScreenPower = s.String()
}

func (m *mockGuard) InjectSignal(ctx context.Context, kind timeguard.TimeSignalKind) {
	m.signals = append(m.signals, kind)
}

func (m *mockGuard) Stats(ctx context.Context) models.GuardStats { return m.stats }

type mockCommands struct {
	mu       sync.Mutex
	result   any
	err      error
	lastName string
	lastArgs json.RawMessage
}

func (m *mockCommands) Invoke(ctx context.Context, method string, args json.RawMessage) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastName = method
	m.lastArgs = args
	return m.result, m.err
}

type mockEventLog struct {
	resp       []models.GuardDecision
	err        error
	lastFilter service.LogFilter
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.GuardDecision, error) {
	m.lastFilter = f
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

// authHeader builds the header doJSON sends; "" means no header.
func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
