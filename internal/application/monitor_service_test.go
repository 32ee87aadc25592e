package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/choidage/daker/internal/application"
	"github.com/choidage/daker/internal/domain"
	"github.com/choidage/daker/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMonitor(api *fakeMonitor, zones *fakeZones) *application.MonitorService {
	var zs *application.WorkZoneService
	if zones != nil {
		zs = newZoneService(zones)
	}
	return application.NewMonitorService(api, zs, time.Second, logging.Discard())
}

func TestMonitor_SnapshotFallsBackToEmpty(t *testing.T) {
	snap := newMonitor(&fakeMonitor{snapErr: errRefused}, nil).Snapshot(context.Background())
	require.NotNil(t, snap)
	assert.Empty(t, snap.Gates)
	assert.NotNil(t, snap.Gates)
	_, err := time.Parse(time.RFC3339, snap.Timestamp)
	assert.NoError(t, err)
}

func TestMonitor_Snapshot(t *testing.T) {
	api := &fakeMonitor{snap: &domain.DashboardSnapshot{TotalFiles: 12, Timestamp: "2026-01-01T00:00:00"}}
	snap := newMonitor(api, nil).Snapshot(context.Background())
	assert.Equal(t, 12, snap.TotalFiles)
	assert.NotNil(t, snap.Gates)
}

func TestMonitor_RefreshPartialResults(t *testing.T) {
	api := &fakeMonitor{
		healthErr: errors.New("boom"),
		alerts: []domain.Alert{
			{ID: "a1", Title: "Pass rate low"},
			{ID: "a2", Title: "Old", Acknowledged: true},
		},
	}
	zones := &fakeZones{zones: []domain.WorkZone{{Author: "bob"}}}

	panel := newMonitor(api, zones).Refresh(context.Background())
	assert.Nil(t, panel.Health)
	assert.Contains(t, panel.Errors["health"], "boom")
	require.Len(t, panel.Alerts, 1)
	assert.Equal(t, "a1", panel.Alerts[0].ID)
	assert.Len(t, panel.Zones, 1)
}

func TestMonitor_RefreshAllFailing(t *testing.T) {
	api := &fakeMonitor{healthErr: errRefused, alertsErr: errRefused}
	zones := &fakeZones{listErr: errRefused}

	panel := newMonitor(api, zones).Refresh(context.Background())
	assert.Len(t, panel.Errors, 3)
	assert.NotNil(t, panel.Alerts)
	assert.NotNil(t, panel.Zones)
}

func TestMonitor_AlertsEvaluateAcknowledge(t *testing.T) {
	api := &fakeMonitor{
		alerts:    []domain.Alert{{ID: "a1"}, {ID: "a2", Acknowledged: true}},
		evaluated: 2,
	}
	m := newMonitor(api, nil)

	all, err := m.Alerts(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	n, err := m.Evaluate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	ok, err := m.Acknowledge(context.Background(), "all")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"all"}, api.acked)

	_, err = m.Acknowledge(context.Background(), " ")
	assert.Error(t, err)
}

func TestMonitor_OnPushRefetches(t *testing.T) {
	tests := []struct {
		name       string
		msgType    string
		wantEval   int
		wantAlerts int
		wantHealth int
	}{
		{"alert reloads alerts", domain.PushAlert, 0, 1, 0},
		{"dashboard update evaluates and refreshes", domain.PushDashboardUpdate, 1, 1, 1},
		{"gate result evaluates and refreshes", domain.PushGateResult, 1, 1, 1},
		{"pipeline result evaluates and refreshes", domain.PushPipelineResult, 1, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeMonitor{
				health: &domain.Health{Overall: 80},
				alerts: []domain.Alert{{ID: "a1"}, {ID: "a2", Acknowledged: true}},
			}
			panel := newMonitor(api, nil).OnPush(context.Background(), domain.PushMessage{Type: tt.msgType})
			require.NotNil(t, panel)
			assert.Equal(t, tt.wantEval, api.evalCalls)
			assert.Equal(t, tt.wantAlerts, api.alertsCalls)
			assert.Equal(t, tt.wantHealth, api.healthCalls)
			require.Len(t, panel.Alerts, 1)
			assert.Equal(t, "a1", panel.Alerts[0].ID)
		})
	}
}

func TestMonitor_OnPushIgnoresUnknownTypes(t *testing.T) {
	api := &fakeMonitor{}
	panel := newMonitor(api, nil).OnPush(context.Background(), domain.PushMessage{Type: "heartbeat"})
	assert.Nil(t, panel)
	assert.Zero(t, api.alertsCalls+api.evalCalls+api.healthCalls)
}

func TestMonitor_OnPushAlertFailure(t *testing.T) {
	api := &fakeMonitor{alertsErr: errRefused}
	panel := newMonitor(api, nil).OnPush(context.Background(), domain.PushMessage{Type: domain.PushAlert})
	require.NotNil(t, panel)
	assert.Contains(t, panel.Errors, "alerts")
	assert.NotNil(t, panel.Alerts)
}
