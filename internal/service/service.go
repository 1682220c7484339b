package service

import (
	"context"
	"encoding/json"
	"time"

	"timeguard"
	"timeguard/internal/guard"
	"timeguard/internal/models"
	"timeguard/internal/repository"
	"timeguard/internal/signals"

	"github.com/rcrowley/go-metrics"
)

// Operators manages the accounts that may use the control API and the
// method channel.
type Operators interface {
	Register(ctx context.Context, name, password string, role models.Role) (int, error)
	SignIn(ctx context.Context, name, password string) (string, error)
	Authenticate(accessToken string) (models.Session, error)
}

// Guard exposes the tracker and lets API clients act as signal sources.
type Guard interface {
	State(ctx context.Context) models.GuardState
	SetVisibility(ctx context.Context, v timeguard.VisibilityState)
	SetScreenPower(ctx context.Context, s timeguard.ScreenPowerState)
	InjectSignal(ctx context.Context, kind timeguard.TimeSignalKind)
	Stats(ctx context.Context) models.GuardStats
}

// Commands dispatches method channel calls by name.
type Commands interface {
	Invoke(ctx context.Context, method string, args json.RawMessage) (any, error)
}

// EventLog exposes the persisted decision history with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.GuardDecision, error)
}

// LogFilter supports history filtering by time range, signal kind and decision.
type LogFilter struct {
	From     time.Time // inclusive; zero means no lower bound
	To       time.Time // inclusive; zero means no upper bound
	Kind     string    // "", "clock", "timezone", "date"
	Decision string    // "", "NOTIFIED", "SUPPRESSED"
	Limit    int
}

// ClientCounter reports how many application clients are connected.
type ClientCounter interface {
	Len() int
}

type Service struct {
	Guard
	Commands
	EventLog
	Operators
}

// Deps are the pieces the services are built from.
type Deps struct {
	Repos     *repository.Repository
	Engine    *guard.Engine
	Publisher signals.Publisher
	Metrics   metrics.Registry
	Clients   ClientCounter
	Auth      AuthOptions
}

func NewService(deps Deps) *Service {
	return &Service{
		Guard:         NewGuardService(deps.Engine, deps.Publisher, deps.Metrics, deps.Clients),
		Commands:      NewCommandService(deps.Engine.Gate()),
		EventLog:      NewEventLogService(deps.Repos.DecisionRepo),
		Operators:     NewOperatorService(deps.Repos.Operators, deps.Auth),
	}
}
