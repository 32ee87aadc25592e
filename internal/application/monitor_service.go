package application

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/choidage/daker/internal/domain"
	"github.com/choidage/daker/internal/logging"
)

// MonitorService reads the dashboard's display-only monitoring surfaces.
type MonitorService struct {
	api     domain.MonitorAPI
	zones   *WorkZoneService
	timeout time.Duration
	group   singleflight.Group
	log     *logging.Logger
	now     func() time.Time
}

func NewMonitorService(api domain.MonitorAPI, zones *WorkZoneService, timeout time.Duration, logger *logging.Logger) *MonitorService {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &MonitorService{api: api, zones: zones, timeout: timeout, log: logger.With("monitor"), now: time.Now}
}

// Snapshot returns the dashboard aggregate. Any failure yields an empty
// snapshot stamped with the current time.
func (s *MonitorService) Snapshot(ctx context.Context) *domain.DashboardSnapshot {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	snap, err := s.api.Dashboard(ctx)
	if err != nil || snap == nil {
		if err != nil {
			s.log.Warnf("dashboard unavailable error=%v", err)
		}
		return &domain.DashboardSnapshot{
			Gates:     []domain.GateResult{},
			Timestamp: s.now().UTC().Format(time.RFC3339),
		}
	}
	if snap.Gates == nil {
		snap.Gates = []domain.GateResult{}
	}
	return snap
}

// Refresh fetches health, active alerts and zones concurrently. A failed
// fetch leaves its field empty and is recorded in Errors; the others are
// still returned. Overlapping calls share one round of requests.
func (s *MonitorService) Refresh(ctx context.Context) *domain.Panel {
	v, _, _ := s.group.Do("refresh", func() (any, error) {
		return s.refresh(ctx), nil
	})
	return v.(*domain.Panel)
}

func (s *MonitorService) refresh(ctx context.Context) *domain.Panel {
	panel := &domain.Panel{Alerts: []domain.Alert{}, Zones: []domain.WorkZone{}}
	var mu sync.Mutex
	fail := func(field string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if panel.Errors == nil {
			panel.Errors = make(map[string]string)
		}
		panel.Errors[field] = err.Error()
		s.log.Warnf("refresh %s error=%v", field, err)
	}

	var g errgroup.Group
	g.Go(func() error {
		h, err := s.Health(ctx)
		if err != nil {
			fail("health", err)
			return nil
		}
		mu.Lock()
		panel.Health = h
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		alerts, err := s.Alerts(ctx, true)
		if err != nil {
			fail("alerts", err)
			return nil
		}
		mu.Lock()
		panel.Alerts = alerts
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		if s.zones == nil {
			return nil
		}
		zones, err := s.zones.List(ctx)
		if err != nil {
			fail("zones", err)
			return nil
		}
		mu.Lock()
		panel.Zones = zones
		mu.Unlock()
		return nil
	})
	_ = g.Wait()
	return panel
}

// OnPush re-fetches what a push notification invalidates. An alert
// notification reloads the active alerts; a dashboard update or a new gate
// or pipeline result evaluates the alert rules first and then reloads the
// whole panel. Other message types return nil.
func (s *MonitorService) OnPush(ctx context.Context, msg domain.PushMessage) *domain.Panel {
	switch msg.Type {
	case domain.PushAlert:
		panel := &domain.Panel{Alerts: []domain.Alert{}, Zones: []domain.WorkZone{}}
		alerts, err := s.Alerts(ctx, true)
		if err != nil {
			panel.Errors = map[string]string{"alerts": err.Error()}
			s.log.Warnf("push %s refetch error=%v", msg.Type, err)
			return panel
		}
		panel.Alerts = alerts
		return panel
	case domain.PushDashboardUpdate, domain.PushGateResult, domain.PushPipelineResult:
		if n, err := s.Evaluate(ctx); err != nil {
			s.log.Warnf("push %s evaluate error=%v", msg.Type, err)
		} else if n > 0 {
			s.log.Infof("push %s raised %d alert(s)", msg.Type, n)
		}
		return s.Refresh(ctx)
	default:
		return nil
	}
}

func (s *MonitorService) Health(ctx context.Context) (*domain.Health, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	h, err := s.api.Health(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching health: %w", err)
	}
	return h, nil
}

// Alerts lists alerts, only unacknowledged ones when activeOnly is set.
func (s *MonitorService) Alerts(ctx context.Context, activeOnly bool) ([]domain.Alert, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	alerts, err := s.api.Alerts(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("fetching alerts: %w", err)
	}
	if alerts == nil {
		alerts = []domain.Alert{}
	}
	return alerts, nil
}

// Evaluate asks the dashboard to evaluate its alert rules and returns how
// many new alerts were raised.
func (s *MonitorService) Evaluate(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	n, err := s.api.EvaluateAlerts(ctx)
	if err != nil {
		return 0, fmt.Errorf("evaluating alerts: %w", err)
	}
	return n, nil
}

// Acknowledge marks an alert as seen. "all" acknowledges every alert.
func (s *MonitorService) Acknowledge(ctx context.Context, alertID string) (bool, error) {
	alertID = strings.TrimSpace(alertID)
	if alertID == "" {
		return false, fmt.Errorf("alert id required")
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	ok, err := s.api.AcknowledgeAlert(ctx, alertID)
	if err != nil {
		return false, fmt.Errorf("acknowledging alert %s: %w", alertID, err)
	}
	return ok, nil
}
