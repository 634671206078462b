// Package runner submits a built survey to the chemistry service and
// collects one raw result per point, in point order.
package runner

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hydrolytics/olisurvey/internal/logging"
	"github.com/hydrolytics/olisurvey/internal/oli"
	"github.com/hydrolytics/olisurvey/internal/result"
	"github.com/hydrolytics/olisurvey/internal/survey"
)

// Caller is the slice of the service client the runner needs.
type Caller interface {
	Flash(ctx context.Context, fileID, method string, input any) ([]byte, error)
}

// Config configures a Runner.
type Config struct {
	// Parallelism bounds in-flight calculations. Defaults to 1.
	Parallelism int
	// RequestsPerSecond rate-limits service calls across all workers.
	// Zero disables limiting.
	RequestsPerSecond float64
	// Burst is the limiter burst size. Defaults to 1 when limiting.
	Burst int
	// MaxRetries is the extra attempts allowed per point.
	MaxRetries int
	// Method is the flash method. Defaults to wateranalysis.
	Method string
	// Options configures each water-analysis call.
	Options oli.AnalysisOptions
	// Logger defaults to a discard logger.
	Logger *logging.Logger
}

// Runner fans survey points out to the service. Result i always corresponds
// to point i; the extractor depends on that correlation.
type Runner struct {
	client      Caller
	limiter     *rate.Limiter
	parallelism int
	maxRetries  int
	method      string
	options     oli.AnalysisOptions
	log         *logging.Logger
}

// New creates a Runner.
func New(client Caller, cfg Config) *Runner {
	parallelism := cfg.Parallelism
	if parallelism <= 0 {
		parallelism = 1
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	method := cfg.Method
	if method == "" {
		method = oli.MethodWaterAnalysis
	}
	log := cfg.Logger
	if log == nil {
		log = logging.Discard()
	}

	return &Runner{
		client:      client,
		limiter:     limiter,
		parallelism: parallelism,
		maxRetries:  cfg.MaxRetries,
		method:      method,
		options:     cfg.Options,
		log:         log.WithField("component", "runner"),
	}
}

// Run submits every point and returns the parsed results in point order.
// A point that exhausts its retry budget fails the whole batch and cancels
// the remaining calls.
func (r *Runner) Run(ctx context.Context, fileID string, points []survey.Point) ([]*result.RawResult, error) {
	if fileID == "" {
		return nil, fmt.Errorf("runner: file id is required")
	}

	results := make([]*result.RawResult, len(points))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallelism)
	for i, point := range points {
		i, point := i, point
		g.Go(func() error {
			parsed, err := r.runPoint(ctx, fileID, point)
			if err != nil {
				return fmt.Errorf("runner: point %d: %w", point.Index, err)
			}
			results[i] = parsed
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	r.log.WithContext(ctx).WithField("points", len(points)).Info("survey batch complete")
	return results, nil
}

func (r *Runner) runPoint(ctx context.Context, fileID string, point survey.Point) (*result.RawResult, error) {
	input := oli.BuildWaterAnalysisInput(point.State, r.options)

	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if err := r.wait(ctx); err != nil {
			return nil, err
		}

		data, err := r.client.Flash(ctx, fileID, r.method, input)
		if err != nil {
			lastErr = err
			r.log.WithContext(ctx).WithError(err).
				WithFields(map[string]any{"point": point.Index, "attempt": attempt}).
				Warn("flash call failed")
			if ctx.Err() != nil {
				return nil, err
			}
			continue
		}
		return result.Parse(data)
	}
	return nil, lastErr
}

func (r *Runner) wait(ctx context.Context) error {
	if r.limiter == nil {
		if err := ctx.Err(); err != nil {
			return err
		}
		return nil
	}
	return r.limiter.Wait(ctx)
}
