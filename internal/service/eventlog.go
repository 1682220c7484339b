package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"timeguard"
	"timeguard/internal/models"
	"timeguard/internal/repository"
)

const maxLogLimit = 1000

type EventLogService struct {
	decisionRepo repository.DecisionRepo
}

func NewEventLogService(decisionRepo repository.DecisionRepo) *EventLogService {
	return &EventLogService{decisionRepo: decisionRepo}
}

var (
	errInvalidTimeRange = errors.New("invalid time range: From must be <= To")
	errInvalidKind      = errors.New("invalid kind: must be clock, timezone or date")
	errInvalidDecision  = errors.New("invalid decision: must be NOTIFIED or SUPPRESSED")
)

// IsValidationError reports whether err comes from filter validation.
func IsValidationError(err error) bool {
	return errors.Is(err, errInvalidTimeRange) || errors.Is(err, errInvalidKind) || errors.Is(err, errInvalidDecision)
}

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeKind maps kind aliases onto their canonical name.
func normalizeKind(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	k, err := timeguard.ParseTimeSignalKind(s)
	if err != nil {
		return "", errInvalidKind
	}
	return k.String(), nil
}

func normalizeDecision(s string) (string, error) {
	d := strings.ToUpper(strings.TrimSpace(s))
	switch timeguard.Outcome(d) {
	case "", timeguard.OutcomeNotified, timeguard.OutcomeSuppressed:
		return d, nil
	default:
		return "", errInvalidDecision
	}
}

// normalizeAndValidateFilter prepares query parameters and validates them.
func normalizeAndValidateFilter(f LogFilter) (models.DecisionFilter, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return models.DecisionFilter{}, errInvalidTimeRange
	}

	kind, err := normalizeKind(f.Kind)
	if err != nil {
		return models.DecisionFilter{}, err
	}
	decision, err := normalizeDecision(f.Decision)
	if err != nil {
		return models.DecisionFilter{}, err
	}

	limit := f.Limit
	if limit <= 0 || limit > maxLogLimit {
		limit = maxLogLimit
	}
	return models.DecisionFilter{From: from, To: to, Kind: kind, Decision: decision, Limit: limit}, nil
}

func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.GuardDecision, error) {
	filter, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.decisionRepo.List(ctx, filter)
}
