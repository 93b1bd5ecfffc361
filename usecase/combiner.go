package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/voxtag/adapters/pcm"
	"github.com/satriahrh/voxtag/domain/entities"
	"github.com/satriahrh/voxtag/domain/repositories"
	"github.com/satriahrh/voxtag/internal/telemetry"
)

// SegmentSource resolves recording ids to storage keys. Registry implements it.
type SegmentSource interface {
	Lookup(id string) (string, bool)
}

// CombinerConfig bounds a single combine request. Zero disables a limit.
type CombinerConfig struct {
	MaxSegments int
	MaxDuration time.Duration
}

// Combiner concatenates stored recordings into a single container
type Combiner struct {
	storage repositories.BlobStorage
	config  CombinerConfig
	metrics *telemetry.Metrics
	logger  *zap.Logger
	clock   func() time.Time
}

// NewCombiner creates a new Combiner
func NewCombiner(storage repositories.BlobStorage, config CombinerConfig, metrics *telemetry.Metrics, logger *zap.Logger) *Combiner {
	return &Combiner{
		storage: storage,
		config:  config,
		metrics: metrics,
		logger:  logger,
		clock:   time.Now,
	}
}

// Combine concatenates the samples of the given recordings in list order.
// Ids may repeat. Ids that cannot be resolved, loaded or decoded are skipped
// and reported in SkippedIDs; the call fails only when nothing usable is left.
func (c *Combiner) Combine(ctx context.Context, source SegmentSource, ids []string) (*entities.CombinedRecording, error) {
	return c.run(ctx, ids, func(ctx context.Context, id string) ([]int16, error) {
		filename, ok := source.Lookup(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", entities.ErrNotFound, id)
		}
		data, err := c.storage.Get(ctx, filename)
		if err != nil {
			return nil, err
		}
		return pcm.Decode(data)
	})
}

// CombineData concatenates containers supplied inline. Segments are
// identified by their index in SourceIDs and SkippedIDs.
func (c *Combiner) CombineData(ctx context.Context, segments [][]byte) (*entities.CombinedRecording, error) {
	ids := make([]string, len(segments))
	for i := range segments {
		ids[i] = strconv.Itoa(i)
	}
	return c.run(ctx, ids, func(ctx context.Context, id string) ([]int16, error) {
		i, _ := strconv.Atoi(id)
		return pcm.Decode(segments[i])
	})
}

type segmentLoader func(ctx context.Context, id string) ([]int16, error)

func (c *Combiner) run(ctx context.Context, ids []string, load segmentLoader) (*entities.CombinedRecording, error) {
	combined, err := c.combine(ctx, ids, load)
	if err != nil {
		c.metrics.CombineFinished(ctx, combineResult(err), 0, 0)
		return nil, err
	}
	c.metrics.CombineFinished(ctx, "ok", len(combined.SkippedIDs), combined.Duration)
	return combined, nil
}

func (c *Combiner) combine(ctx context.Context, ids []string, load segmentLoader) (*entities.CombinedRecording, error) {
	if len(ids) == 0 {
		return nil, entities.ErrNoSelection
	}
	if c.config.MaxSegments > 0 && len(ids) > c.config.MaxSegments {
		return nil, fmt.Errorf("%w: %d requested, limit is %d", entities.ErrTooManySegments, len(ids), c.config.MaxSegments)
	}

	maxSamples := int(c.config.MaxDuration.Seconds() * pcm.SampleRate)

	decoded := make(map[string][]int16)
	unusable := make(map[string]bool)
	var (
		samples []int16
		used    []string
		skipped []string
	)

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if unusable[id] {
			skipped = append(skipped, id)
			continue
		}

		segment, ok := decoded[id]
		if !ok {
			var err error
			segment, err = load(ctx, id)
			if err != nil {
				c.logger.Warn("Skipping segment", zap.String("id", id), zap.Error(err))
				unusable[id] = true
				skipped = append(skipped, id)
				continue
			}
			decoded[id] = segment
		}

		if maxSamples > 0 && len(samples)+len(segment) > maxSamples {
			return nil, fmt.Errorf("%w: limit is %s", entities.ErrCombinedTooLong, c.config.MaxDuration)
		}
		samples = append(samples, segment...)
		used = append(used, id)
	}

	if len(used) == 0 {
		return nil, entities.ErrNoValidSegments
	}

	data, err := pcm.Encode(samples, pcm.DefaultFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode combined recording: %w", err)
	}

	now := c.clock()
	id := entities.NewID(now)
	result := &entities.CombinedRecording{
		ID:          id,
		Filename:    entities.CombinedFilename(id),
		SourceIDs:   used,
		SkippedIDs:  skipped,
		SampleCount: len(samples),
		Duration:    float64(len(samples)) / pcm.SampleRate,
		Data:        data,
		CreatedAt:   now,
	}

	if err := c.storage.Put(ctx, result.Filename, data); err != nil {
		return nil, fmt.Errorf("failed to persist combined recording: %w", err)
	}

	c.logger.Info("Recordings combined",
		zap.String("filename", result.Filename),
		zap.Int("segments", len(used)),
		zap.Int("skipped", len(skipped)),
		zap.Int("samples", result.SampleCount))

	return result, nil
}

// Get returns a previously combined container by filename
func (c *Combiner) Get(ctx context.Context, filename string) ([]byte, error) {
	if !entities.IsCombinedFilename(filename) {
		return nil, fmt.Errorf("%w: %s", entities.ErrNotFound, filename)
	}
	data, err := c.storage.Get(ctx, filename)
	if errors.Is(err, repositories.ErrBlobNotFound) {
		return nil, fmt.Errorf("%w: %s", entities.ErrNotFound, filename)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load combined recording: %w", err)
	}
	return data, nil
}

func combineResult(err error) string {
	switch {
	case errors.Is(err, entities.ErrNoSelection):
		return "no_selection"
	case errors.Is(err, entities.ErrNoValidSegments):
		return "no_valid_segments"
	case errors.Is(err, entities.ErrTooManySegments), errors.Is(err, entities.ErrCombinedTooLong):
		return "limit_exceeded"
	default:
		return "error"
	}
}
