package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/veranemoloko/media-downloader/internal/domain"
	errpkg "github.com/veranemoloko/media-downloader/internal/errors"
	"github.com/veranemoloko/media-downloader/internal/service"
	"github.com/veranemoloko/media-downloader/internal/ui"
	"github.com/veranemoloko/media-downloader/internal/validation"
)

// MaxParallelPlatforms caps how many platforms download at the same time.
const MaxParallelPlatforms = 5

// Job is one entry of a batch file.
type Job struct {
	domain.FormSnapshot `yaml:",inline"`

	Platform domain.Platform `yaml:"platform"`
}

type jobFile struct {
	Jobs []Job `yaml:"jobs"`
}

// LoadJobs reads a YAML batch file. Every job must name a supported platform.
func LoadJobs(path string) ([]Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", errpkg.ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("read batch file: %w", err)
	}

	var f jobFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse batch file: %w", err)
	}

	for i, job := range f.Jobs {
		if err := validation.ValidatePlatform(job.Platform); err != nil {
			return nil, fmt.Errorf("job %d: %w", i+1, err)
		}
	}
	return f.Jobs, nil
}

// Submitter runs a single submission.
type Submitter interface {
	Submit(ctx context.Context, platform domain.Platform, form domain.FormSnapshot, ctrl ui.Control) service.Outcome
}

// BatchRunner submits a list of jobs. Jobs of one platform share a single
// control and run one after another; platforms run concurrently.
type BatchRunner struct {
	submitter Submitter
	logger    *slog.Logger
}

// NewBatchRunner creates a BatchRunner.
func NewBatchRunner(submitter Submitter, logger *slog.Logger) *BatchRunner {
	return &BatchRunner{
		submitter: submitter,
		logger:    logger,
	}
}

// Run submits every job and returns one outcome per job in input order.
// The error reports how many jobs failed; outcomes are always complete.
func (r *BatchRunner) Run(ctx context.Context, jobs []Job) ([]service.Outcome, error) {
	outcomes := make([]service.Outcome, len(jobs))

	order := make([]domain.Platform, 0, len(domain.Platforms))
	byPlatform := make(map[domain.Platform][]int)
	for i, job := range jobs {
		if _, ok := byPlatform[job.Platform]; !ok {
			order = append(order, job.Platform)
		}
		byPlatform[job.Platform] = append(byPlatform[job.Platform], i)
	}

	var g errgroup.Group
	g.SetLimit(MaxParallelPlatforms)

	for _, platform := range order {
		platform := platform
		indexes := byPlatform[platform]
		g.Go(func() error {
			button := ui.NewButton(ui.DefaultLabel)
			for _, i := range indexes {
				if err := ctx.Err(); err != nil {
					outcomes[i] = service.Outcome{
						Platform: platform,
						State:    domain.StateFailed,
						Message:  "skipped",
						Err:      err,
					}
					continue
				}
				outcomes[i] = r.submitter.Submit(ctx, platform, jobs[i].FormSnapshot, button)
			}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, out := range outcomes {
		if out.Err != nil {
			failed++
		}
	}

	r.logger.Info("batch finished", "jobs", len(jobs), "failed", failed)

	if failed > 0 {
		return outcomes, fmt.Errorf("batch: %d of %d jobs failed", failed, len(jobs))
	}
	return outcomes, nil
}
