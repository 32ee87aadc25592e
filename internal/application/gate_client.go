package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/choidage/daker/internal/domain"
	"github.com/choidage/daker/internal/domain/normalize"
	"github.com/choidage/daker/internal/logging"
)

// Stage names the transport that produced a run's results.
type Stage string

const (
	StageRemote Stage = "remote"
	StageLocal  Stage = "local"
	// StageNone means both transports failed and the results hold the
	// synthetic error gate.
	StageNone Stage = "none"
)

var errNoTransport = errors.New("transport not configured")

// StageError records why one transport stage failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s gate run: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// RunOutcome is the result of one gate invocation. Results is never empty:
// when Stage is StageNone it holds the single synthetic error gate. Both
// stage errors stay available for logging and tests.
type RunOutcome struct {
	Results   []domain.GateResult
	Pipeline  domain.PipelineRunResult
	Stage     Stage
	RemoteErr *StageError
	LocalErr  *StageError
}

// OK reports whether a real transport produced the results.
func (o RunOutcome) OK() bool { return o.Stage == StageRemote || o.Stage == StageLocal }

// GateClientConfig bounds each transport.
type GateClientConfig struct {
	RemoteTimeout time.Duration
	LocalTimeout  time.Duration
}

// GateClient runs gates remotely and falls back to local execution once.
// It keeps no state between calls.
type GateClient struct {
	remote domain.GateRunner
	local  domain.GateRunner
	cfg    GateClientConfig
	log    *logging.Logger
}

func NewGateClient(remote, local domain.GateRunner, cfg GateClientConfig, logger *logging.Logger) *GateClient {
	if cfg.RemoteTimeout <= 0 {
		cfg.RemoteTimeout = 10 * time.Second
	}
	if cfg.LocalTimeout <= 0 {
		cfg.LocalTimeout = 30 * time.Second
	}
	return &GateClient{remote: remote, local: local, cfg: cfg, log: logger.With("gate")}
}

// Run executes req: remote first, then local, then the synthetic error
// result. Transport and parse failures are returned as data. The only error
// is an unrecognized gate status, which is a backend contract violation and
// does not trigger fallback.
func (c *GateClient) Run(ctx context.Context, req domain.GateRequest) (RunOutcome, error) {
	if req.FilePath == "" {
		return RunOutcome{}, domain.ErrNoFile
	}
	if req.Mode == "" {
		req.Mode = domain.ModeGateCheck
	}

	var out RunOutcome

	pipe, err := c.attempt(ctx, c.remote, c.cfg.RemoteTimeout, req)
	switch {
	case err == nil:
		return c.done(out, StageRemote, pipe), nil
	case errors.Is(err, domain.ErrUnknownStatus):
		return RunOutcome{Stage: StageRemote}, err
	}
	out.RemoteErr = &StageError{Stage: StageRemote, Err: err}
	c.log.Warnf("remote failed file=%s mode=%s error=%v; falling back to local", req.FilePath, req.Mode, err)

	pipe, err = c.attempt(ctx, c.local, c.cfg.LocalTimeout, req)
	switch {
	case err == nil:
		return c.done(out, StageLocal, pipe), nil
	case errors.Is(err, domain.ErrUnknownStatus):
		out.Stage = StageLocal
		return out, err
	}
	out.LocalErr = &StageError{Stage: StageLocal, Err: err}
	c.log.Errorf("local failed file=%s error=%v", req.FilePath, err)

	out.Stage = StageNone
	out.Results = normalize.Failure(fmt.Errorf("gate execution failed: %w", err))
	out.Pipeline = domain.NewPipelineRunResult(req.FilePath, out.Results)
	return out, nil
}

func (c *GateClient) attempt(ctx context.Context, runner domain.GateRunner, timeout time.Duration, req domain.GateRequest) (domain.PipelineRunResult, error) {
	if runner == nil {
		return domain.PipelineRunResult{}, errNoTransport
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	raw, err := runner.RunGates(ctx, req)
	if err != nil {
		return domain.PipelineRunResult{}, err
	}
	if raw == nil {
		return domain.PipelineRunResult{}, errors.New("empty response")
	}
	pipe, err := normalize.Pipeline(*raw)
	if err != nil {
		return domain.PipelineRunResult{}, err
	}
	if pipe.FilePath == "" {
		pipe.FilePath = req.FilePath
	}
	if err := pipe.Validate(); err != nil {
		c.log.Warnf("file=%s %v; using recomputed status", req.FilePath, err)
	}
	return pipe, nil
}

func (c *GateClient) done(out RunOutcome, stage Stage, pipe domain.PipelineRunResult) RunOutcome {
	out.Stage = stage
	out.Pipeline = pipe
	out.Results = pipe.Gates
	c.log.Debugf("stage=%s file=%s gates=%d overall=%s", stage, pipe.FilePath, len(pipe.Gates), pipe.OverallStatus)
	return out
}
