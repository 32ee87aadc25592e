package application

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/choidage/daker/internal/domain"
	"github.com/choidage/daker/internal/logging"
)

const (
	msgDeclared        = "Work Zone declared"
	msgDeclaredOffline = "Work Zone declared (offline)"
)

// WorkZoneService talks to the remote work-zone registry. Declaration is
// advisory: an unreachable server counts as an offline success. Release
// and List report every failure.
type WorkZoneService struct {
	api     domain.WorkZoneAPI
	timeout time.Duration
	log     *logging.Logger
}

func NewWorkZoneService(api domain.WorkZoneAPI, timeout time.Duration, logger *logging.Logger) *WorkZoneService {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &WorkZoneService{api: api, timeout: timeout, log: logger.With("zone")}
}

// Declare claims filePath for user.
func (s *WorkZoneService) Declare(ctx context.Context, filePath, user string) domain.DeclareResult {
	return s.DeclareFiles(ctx, []string{filePath}, user, "")
}

// DeclareFiles claims files for user. An empty description defaults to
// "Working on <first file>".
func (s *WorkZoneService) DeclareFiles(ctx context.Context, files []string, user, description string) domain.DeclareResult {
	files = compact(files)
	if len(files) == 0 {
		return domain.DeclareResult{Success: false, Message: domain.ErrNoFile.Error()}
	}
	if strings.TrimSpace(user) == "" {
		user = domain.DefaultAuthor
	}
	if description == "" {
		description = "Working on " + filepath.Base(files[0])
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.api.Declare(ctx, user, files, description)
	if err != nil {
		var se *domain.ServerStatusError
		if errors.As(err, &se) {
			s.log.Warnf("declare rejected author=%s %v", user, se)
			return domain.DeclareResult{Success: false, Message: se.Error()}
		}
		s.log.Warnf("declare unreachable author=%s error=%v; treating as offline", user, err)
		return domain.DeclareResult{Success: true, Message: msgDeclaredOffline, Offline: true}
	}

	result := domain.DeclareResult{Success: true, Message: msgDeclared}
	if resp != nil && len(resp.Conflicts) > 0 {
		result.Conflicts = []string(resp.Conflicts)
		result.Message = fmt.Sprintf("%s with %d conflict(s)", msgDeclared, len(resp.Conflicts))
	}
	return result
}

// Release drops every zone held by user.
func (s *WorkZoneService) Release(ctx context.Context, user string) error {
	if strings.TrimSpace(user) == "" {
		user = domain.DefaultAuthor
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.api.Release(ctx, user); err != nil {
		return fmt.Errorf("releasing work zone: %w", err)
	}
	return nil
}

// List returns every active zone.
func (s *WorkZoneService) List(ctx context.Context) ([]domain.WorkZone, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	zones, err := s.api.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing work zones: %w", err)
	}
	return zones, nil
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
