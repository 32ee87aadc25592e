package normalize_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/choidage/daker/internal/domain"
	"github.com/choidage/daker/internal/domain/normalize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func TestStatus_AcceptsKnownForms(t *testing.T) {
	tests := map[string]domain.GateStatus{
		"passed":            domain.StatusPassed,
		"FAILED":            domain.StatusFailed,
		" Warning ":         domain.StatusWarning,
		"skipped":           domain.StatusSkipped,
		"GateStatus.PASSED": domain.StatusPassed,
		"gatestatus.failed": domain.StatusFailed,
	}
	for in, want := range tests {
		got, err := normalize.Status(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestStatus_RejectsUnknown(t *testing.T) {
	for _, in := range []string{"", "ok", "error", "pass", "Other.PASSED"} {
		_, err := normalize.Status(in)
		require.Error(t, err, in)
		assert.True(t, errors.Is(err, domain.ErrUnknownStatus), in)
	}
}

func TestResults_ToleratesBothFieldFamilies(t *testing.T) {
	payload := `[
		{"gate_number": 1, "gate_name": "Syntax", "status": "passed", "message": "ok", "details": null},
		{"gate": 2, "name": "Rules", "status": "failed", "message": "bad", "issues": ["L3: x"]},
		{"gate": 3, "name": "Review", "status": "warning", "message": "meh"}
	]`
	var raw []domain.RawGateResult
	require.NoError(t, json.Unmarshal([]byte(payload), &raw))

	got, err := normalize.Results(raw)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, 1, got[0].GateNumber)
	assert.Equal(t, "Syntax", got[0].GateName)
	assert.NotNil(t, got[0].Details)
	assert.Empty(t, got[0].Details)

	assert.Equal(t, 2, got[1].GateNumber)
	assert.Equal(t, "Rules", got[1].GateName)
	assert.Equal(t, domain.StatusFailed, got[1].Status)
	assert.Equal(t, []string{"L3: x"}, got[1].Details)

	assert.Equal(t, "Review", got[2].GateName)
	assert.NotNil(t, got[2].Details)
}

func TestResult_DefaultsNumberAndName(t *testing.T) {
	got, err := normalize.Result(domain.RawGateResult{Status: "passed"}, 4)
	require.NoError(t, err)
	assert.Equal(t, 5, got.GateNumber)
	assert.Equal(t, "Gate 5", got.GateName)
}

func TestResult_PrefersGateNumberOverGate(t *testing.T) {
	got, err := normalize.Result(domain.RawGateResult{GateNumber: intPtr(3), Gate: intPtr(9), Status: "passed"}, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, got.GateNumber)
}

func TestResult_DoesNotAliasInputDetails(t *testing.T) {
	details := []string{"L1: a"}
	got, err := normalize.Result(domain.RawGateResult{Status: "failed", Details: details}, 0)
	require.NoError(t, err)
	details[0] = "changed"
	assert.Equal(t, "L1: a", got.Details[0])
}

func TestResults_UnknownStatusCarriesGate(t *testing.T) {
	raw := []domain.RawGateResult{
		{Gate: intPtr(1), Status: "passed"},
		{Gate: intPtr(2), Status: "exploded"},
	}
	_, err := normalize.Results(raw)
	require.Error(t, err)

	var unknown *normalize.UnknownStatusError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, 2, unknown.Gate)
	assert.Equal(t, "exploded", unknown.Value)
	assert.ErrorIs(t, err, domain.ErrUnknownStatus)
}

func TestPipeline_RecomputesOverall(t *testing.T) {
	run := domain.RawRun{
		FilePath:      "/src/app.py",
		OverallStatus: "passed",
		Gates: []domain.RawGateResult{
			{Gate: intPtr(1), Status: "passed"},
			{Gate: intPtr(2), Status: "failed"},
		},
	}
	got, err := normalize.Pipeline(run)
	require.NoError(t, err)
	assert.Equal(t, "/src/app.py", got.FilePath)
	assert.Equal(t, domain.StatusFailed, got.OverallStatus)
	assert.Equal(t, domain.StatusPassed, got.Reported)
	assert.ErrorIs(t, got.Validate(), domain.ErrOverallMismatch)
}

func TestPipeline_AgreeingOverallValidates(t *testing.T) {
	run := domain.RawRun{
		OverallStatus: "warning",
		Gates: []domain.RawGateResult{
			{Gate: intPtr(1), Status: "passed"},
			{Gate: intPtr(2), Status: "warning"},
			{Gate: intPtr(3), Status: "skipped"},
		},
	}
	got, err := normalize.Pipeline(run)
	require.NoError(t, err)
	assert.NoError(t, got.Validate())
}

func TestFailure_SingleSyntheticResult(t *testing.T) {
	got := normalize.Failure(errors.New("connection refused"))
	require.Len(t, got, 1)
	assert.Equal(t, 0, got[0].GateNumber)
	assert.Equal(t, "Error", got[0].GateName)
	assert.Equal(t, domain.StatusSkipped, got[0].Status)
	assert.Equal(t, "connection refused", got[0].Message)
	assert.NotNil(t, got[0].Details)
	assert.Empty(t, got[0].Details)
	assert.True(t, got[0].IsError())

	assert.Equal(t, "Gate execution failed", normalize.Failure(nil)[0].Message)
}
