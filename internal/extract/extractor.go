// ABOUTME: Segment extractor
// ABOUTME: Resolves an asset, trims it, changes its speed, repeats it and re-encodes it
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/hippolingua/hippolingua/internal/blob"
	"github.com/hippolingua/hippolingua/internal/logging"
	"github.com/hippolingua/hippolingua/internal/metrics"
	"github.com/hippolingua/hippolingua/pkg/audio"
)

// Engine is the set of codec operations the extractor drives.
// *codec.Engine satisfies it.
type Engine interface {
	Decode(ctx context.Context, data []byte, c audio.Container) (*audio.Segment, error)
	Trim(seg *audio.Segment, start, end time.Duration) (*audio.Segment, error)
	ChangeSpeed(seg *audio.Segment, factor float64) (*audio.Segment, error)
	Concat(seg *audio.Segment, times int) (*audio.Segment, error)
	Encode(seg *audio.Segment, c audio.Container) ([]byte, error)
}

// Config holds playback policy
type Config struct {
	MinSpeed         float64
	MaxSpeed         float64
	SupportedFormats []audio.Container
	RepeatCount      int
}

// DefaultConfig returns the stock playback policy
func DefaultConfig() Config {
	return Config{
		MinSpeed:         0.5,
		MaxSpeed:         2.0,
		SupportedFormats: slices.Clone(audio.Containers),
		RepeatCount:      3,
	}
}

// Validate checks the policy for consistency
func (c Config) Validate() error {
	var errs []error
	if c.MinSpeed <= 0 {
		errs = append(errs, fmt.Errorf("min speed must be positive, got %v", c.MinSpeed))
	}
	if c.MinSpeed > c.MaxSpeed {
		errs = append(errs, fmt.Errorf("min speed %v exceeds max speed %v", c.MinSpeed, c.MaxSpeed))
	}
	if len(c.SupportedFormats) == 0 {
		errs = append(errs, errors.New("at least one supported format is required"))
	}
	for _, f := range c.SupportedFormats {
		if _, err := audio.ParseContainer(string(f)); err != nil {
			errs = append(errs, err)
		}
	}
	if c.RepeatCount < 1 {
		errs = append(errs, fmt.Errorf("repeat count must be at least 1, got %d", c.RepeatCount))
	}
	return errors.Join(errs...)
}

// Request describes one playback transform
type Request struct {
	AssetID string
	Start   float64  // seconds
	End     *float64 // seconds; nil means end of asset
	Speed   float64  // zero means 1.0
	Repeat  bool
	Format  audio.Container // empty means same as source
}

// Result is the encoded output of Extract
type Result struct {
	Data        []byte
	Format      audio.Container
	ContentType string
	Filename    string
	Duration    time.Duration // produced segment, before encoding
	Origin      blob.Origin
}

// Extractor runs playback transforms. It holds no per-request state.
type Extractor struct {
	source blob.Source
	engine Engine
	config Config
	logger *slog.Logger
}

// Option configures an Extractor
type Option func(*Extractor)

// WithLogger sets the logger used for per-request log lines
func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = l
	}
}

// New creates an extractor over source and engine
func New(source blob.Source, engine Engine, config Config, opts ...Option) (*Extractor, error) {
	if source == nil {
		return nil, errors.New("blob source is required")
	}
	if engine == nil {
		return nil, errors.New("codec engine is required")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid playback config: %w", err)
	}

	e := &Extractor{
		source: source,
		engine: engine,
		config: config,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the extractor's playback policy
func (e *Extractor) Config() Config {
	return e.config
}

// Extract produces the transformed audio for req
func (e *Extractor) Extract(ctx context.Context, req Request) (*Result, error) {
	started := time.Now()

	res, err := e.extract(ctx, req)

	format := string(req.Format)
	if res != nil {
		format = string(res.Format)
	}
	outputBytes := 0
	if res != nil {
		outputBytes = len(res.Data)
	}
	metrics.RecordExtraction(Kind(err), formatLabel(req, res), time.Since(started), outputBytes)

	attrs := []any{
		slog.String("asset", req.AssetID),
		slog.Float64("start", req.Start),
		slog.Float64("speed", req.Speed),
		slog.Bool("repeat", req.Repeat),
		slog.String("format", format),
		slog.Duration("elapsed", time.Since(started)),
	}
	if req.End != nil {
		attrs = append(attrs, slog.Float64("end", *req.End))
	}
	if err != nil {
		e.log().Warn("extraction failed", append(attrs, slog.String("kind", Kind(err)), slog.Any("error", err))...)
		return nil, err
	}
	e.log().Info("extraction complete", append(attrs,
		slog.Duration("duration", res.Duration),
		slog.Int("bytes", outputBytes),
		slog.String("origin", string(res.Origin)))...)
	return res, nil
}

func (e *Extractor) extract(ctx context.Context, req Request) (*Result, error) {
	if err := checkFinite(req); err != nil {
		return nil, err
	}

	var output audio.Container
	if req.Format != "" {
		c, err := audio.ParseContainer(string(req.Format))
		if err != nil || !e.supports(c) {
			return nil, fmt.Errorf("output format %q: %w", req.Format, audio.ErrUnsupportedFormat)
		}
		output = c
	}

	b, err := e.source.Resolve(ctx, req.AssetID)
	if err != nil {
		return nil, err
	}

	if b.Format == "" || !e.supports(b.Format) {
		return nil, fmt.Errorf("source format %q of %s: %w", b.Format, req.AssetID, audio.ErrUnsupportedFormat)
	}
	if output == "" {
		output = b.Format
	}

	seg, err := e.engine.Decode(ctx, b.Data, b.Format)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", req.AssetID, err)
	}

	duration := seg.Duration()
	start, end := clampRange(req.Start, req.End, duration)

	seg, err = e.engine.Trim(seg, start, end)
	if err != nil {
		return nil, processing("trim", err)
	}

	speed := req.Speed
	if speed == 0 {
		speed = 1.0
	}
	if speed != 1.0 {
		speed = clamp(speed, e.config.MinSpeed, e.config.MaxSpeed)
		seg, err = e.engine.ChangeSpeed(seg, speed)
		if err != nil {
			return nil, processing("speed", err)
		}
	}

	if req.Repeat {
		seg, err = e.engine.Concat(seg, e.config.RepeatCount)
		if err != nil {
			return nil, processing("repeat", err)
		}
	}

	data, err := e.engine.Encode(seg, output)
	if err != nil {
		return nil, processing("encode", err)
	}

	return &Result{
		Data:        data,
		Format:      output,
		ContentType: output.ContentType(),
		Filename:    BaseName(req.AssetID) + output.Ext(),
		Duration:    seg.Duration(),
		Origin:      b.Origin,
	}, nil
}

// formatLabel bounds the metrics format label to known containers.
// Requests that never resolved an output are labelled "source" when no
// format was asked for and "invalid" when the asked format is unknown.
func formatLabel(req Request, res *Result) string {
	if res != nil {
		return string(res.Format)
	}
	if req.Format == "" {
		return "source"
	}
	c, err := audio.ParseContainer(string(req.Format))
	if err != nil {
		return "invalid"
	}
	return string(c)
}

func (e *Extractor) supports(c audio.Container) bool {
	return slices.Contains(e.config.SupportedFormats, c)
}

func (e *Extractor) log() *slog.Logger {
	if e.logger != nil {
		return e.logger
	}
	return logging.L()
}

func processing(stage string, err error) error {
	return fmt.Errorf("%s: %w: %w", stage, ErrProcessing, err)
}

func checkFinite(req Request) error {
	bad := func(v float64) bool { return math.IsNaN(v) || math.IsInf(v, 0) }
	switch {
	case bad(req.Start):
		return fmt.Errorf("start_time %v: %w", req.Start, ErrInvalidParameter)
	case req.End != nil && bad(*req.End):
		return fmt.Errorf("end_time %v: %w", *req.End, ErrInvalidParameter)
	case bad(req.Speed):
		return fmt.Errorf("speed %v: %w", req.Speed, ErrInvalidParameter)
	}
	return nil
}

// clampRange maps the requested bounds into 0 <= start <= end <= duration
func clampRange(startSec float64, endSec *float64, duration time.Duration) (time.Duration, time.Duration) {
	total := duration.Seconds()

	s := clamp(startSec, 0, total)
	e := total
	if endSec != nil {
		e = clamp(*endSec, s, total)
	}

	start := min(seconds(s), duration)
	end := min(max(seconds(e), start), duration)
	return start, end
}

func seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

// BaseName returns the last path element of an asset id without its extension
func BaseName(id string) string {
	base := path.Base(strings.TrimSuffix(id, "/"))
	base = strings.TrimSuffix(base, path.Ext(base))
	if base == "" || base == "." || base == "/" {
		return "audio"
	}
	return base
}
