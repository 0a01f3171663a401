// Package render turns a script into a finished vertical news video. A Renderer runs a fixed
// list of stage tasks (narrate, background, image, overlays, encode) over a job and reports
// progress to an Observer as it goes.
package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mohammad-safakhou/newsreel/config"
	"github.com/mohammad-safakhou/newsreel/internal/helpers"
	"github.com/mohammad-safakhou/newsreel/internal/telemetry"
	"github.com/mohammad-safakhou/newsreel/media"
	"github.com/mohammad-safakhou/newsreel/speech"
	"github.com/sirupsen/logrus"
)

type Stage string

const (
	StageScript     Stage = "script"
	StageNarrate    Stage = "narrate"
	StageBackground Stage = "background"
	StageImage      Stage = "image"
	StageOverlays   Stage = "overlays"
	StageEncode     Stage = "encode"
)

// Labels shown around the render stages by whoever drives a production.
const (
	LabelInit   = "Initializing"
	LabelScript = "Drafting concise news script"
	LabelDone   = "Production complete"
)

var (
	ErrEmptyScript = errors.New("script is empty")
	ErrNoImage     = errors.New("headline has no image")
)

// Progress is one step of a production as shown to the operator.
type Progress struct {
	Percent int
	Label   string
	Stage   Stage
}

type Observer interface {
	Progress(p Progress)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Progress)

func (f ObserverFunc) Progress(p Progress) { f(p) }

// StageError names the stage a production failed in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err) }

func (e *StageError) Unwrap() error { return e.Err }

// Prober reads media metadata.
type Prober interface {
	Duration(ctx context.Context, path string) (time.Duration, error)
	Dimensions(ctx context.Context, path string) (int, int, error)
}

// Encoder writes a composition to its output file.
type Encoder interface {
	Encode(ctx context.Context, c media.Composition) error
}

// Request is one render. Workdir defaults to the configured output directory.
type Request struct {
	Script   string
	ImageURL string
	Workdir  string
}

// Result describes the files a successful render left in the working directory.
type Result struct {
	VideoPath   string
	AudioPath   string
	ImagePath   string
	Duration    time.Duration
	ImageUsed   bool
	ImageErr    error
	Composition media.Composition
}

type Renderer struct {
	cfg     config.RenderConfig
	voice   speech.Synthesizer
	probe   Prober
	enc     Encoder
	client  *http.Client
	log     *logrus.Entry
	metrics *telemetry.Metrics
}

type Option func(*Renderer)

func WithLogger(log *logrus.Entry) Option {
	return func(r *Renderer) { r.log = log }
}

func WithMetrics(m *telemetry.Metrics) Option {
	return func(r *Renderer) { r.metrics = m }
}

// WithHTTPClient sets the client used to download lead images. The per-download timeout
// from render.image.timeout still applies.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Renderer) { r.client = c }
}

// New creates a Renderer. The voice is per production since it may need the operator's key.
func New(cfg config.RenderConfig, voice speech.Synthesizer, probe Prober, enc Encoder, opts ...Option) *Renderer {
	r := &Renderer{
		cfg:    cfg.Normalize(),
		voice:  voice,
		probe:  probe,
		enc:    enc,
		client: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		r.log = logrus.NewEntry(l)
	}
	return r
}

// job carries each stage's output to the stages after it.
type job struct {
	req      Request
	workdir  string
	audio    string
	duration time.Duration
	image    *media.ImageLayer
	imageErr error
	texts    []media.TextLayer
	scratch  []string
	comp     media.Composition
}

type task struct {
	stage   Stage
	percent int
	label   func(j *job) string
	run     func(ctx context.Context, j *job) error
}

func fixed(label string) func(*job) string {
	return func(*job) string { return label }
}

func (r *Renderer) tasks() []task {
	return []task{
		{stage: StageNarrate, percent: 40, label: fixed("Recording professional narration"), run: r.narrate},
		{stage: StageBackground, percent: 60, label: func(j *job) string {
			return fmt.Sprintf("Designing %ds video", int(j.duration.Seconds()))
		}, run: r.background},
		{stage: StageImage, percent: 65, label: fixed("Placing lead image"), run: r.leadImage},
		{stage: StageOverlays, percent: 75, label: fixed("Composing overlays"), run: r.overlays},
		{stage: StageEncode, percent: 85, label: fixed("Finalizing high-quality MP4"), run: r.encode},
	}
}

// Render runs every stage in order. Only the image stage may fail without failing the
// render; any other failure is returned as a *StageError.
func (r *Renderer) Render(ctx context.Context, req Request, obs Observer) (*Result, error) {
	if strings.TrimSpace(req.Script) == "" {
		return nil, &StageError{Stage: StageNarrate, Err: ErrEmptyScript}
	}
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}
	if obs == nil {
		obs = ObserverFunc(func(Progress) {})
	}

	j := &job{req: req, workdir: req.Workdir}
	if j.workdir == "" {
		j.workdir = r.cfg.OutputDir
	}
	if err := os.MkdirAll(j.workdir, 0o755); err != nil {
		return nil, &StageError{Stage: StageNarrate, Err: fmt.Errorf("create workdir: %w", err)}
	}
	defer j.cleanup(r.log)

	for _, t := range r.tasks() {
		if err := ctx.Err(); err != nil {
			return nil, &StageError{Stage: t.stage, Err: err}
		}
		start := time.Now()
		obs.Progress(Progress{Percent: t.percent, Label: t.label(j), Stage: t.stage})
		err := t.run(ctx, j)
		r.metrics.Stage(string(t.stage), time.Since(start))
		if err != nil {
			r.log.WithError(err).WithField("stage", t.stage).Error("render stage failed")
			return nil, &StageError{Stage: t.stage, Err: err}
		}
		r.log.WithFields(logrus.Fields{"stage": t.stage, "elapsed": time.Since(start).String()}).Debug("render stage done")
	}

	res := &Result{
		VideoPath:   j.comp.Output,
		AudioPath:   j.audio,
		Duration:    j.duration,
		ImageUsed:   j.image != nil,
		ImageErr:    j.imageErr,
		Composition: j.comp,
	}
	if j.image != nil {
		res.ImagePath = j.image.Path
	}
	r.metrics.Narration(j.duration)
	return res, nil
}

func (r *Renderer) narrate(ctx context.Context, j *job) error {
	path := filepath.Join(j.workdir, r.cfg.AudioFile)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create narration file: %w", err)
	}
	if err := r.voice.Synthesize(ctx, j.req.Script, f); err != nil {
		_ = f.Close()
		return fmt.Errorf("%s synthesis: %w", r.voice.Name(), err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close narration file: %w", err)
	}
	j.audio = path

	d, err := r.probe.Duration(ctx, path)
	if err != nil {
		return fmt.Errorf("measure narration: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("narration has no duration")
	}
	j.duration = d
	return nil
}

// background only fixes the canvas; the colour source is generated by the encoder.
func (r *Renderer) background(_ context.Context, j *job) error {
	j.comp.Canvas = media.Canvas{
		Width:  r.cfg.Width,
		Height: r.cfg.Height,
		FPS:    r.cfg.FPS,
		Color:  r.cfg.Background,
	}
	j.comp.Duration = j.duration
	return nil
}

func (r *Renderer) leadImage(ctx context.Context, j *job) error {
	if strings.TrimSpace(j.req.ImageURL) == "" {
		j.imageErr = ErrNoImage
		r.metrics.ImageSkipped()
		return nil
	}
	path := filepath.Join(j.workdir, r.cfg.ImageFile)
	if err := r.fetchImage(ctx, j.req.ImageURL, path); err != nil {
		j.imageErr = err
		r.metrics.ImageSkipped()
		r.log.WithError(err).Warn("lead image skipped")
		return nil
	}
	j.image = &media.ImageLayer{Path: path, Width: r.cfg.Image.Width, Y: r.cfg.Image.Y}
	return nil
}

func (r *Renderer) overlays(_ context.Context, j *job) error {
	banner, err := j.writeScratch("banner.txt", r.cfg.Banner.Text)
	if err != nil {
		return err
	}
	caption, err := j.writeScratch("caption.txt", helpers.Wrap(j.req.Script, r.cfg.Caption.WrapWidth))
	if err != nil {
		return err
	}
	j.texts = []media.TextLayer{
		{
			Name:      "banner",
			Text:      r.cfg.Banner.Text,
			TextFile:  banner,
			FontFile:  r.cfg.FontFile,
			FontSize:  r.cfg.Banner.FontSize,
			Color:     r.cfg.Banner.Color,
			BoxColor:  r.cfg.Banner.BoxColor,
			BoxBorder: 10,
			Y:         r.cfg.Banner.Y,
		},
		{
			Name:        "caption",
			Text:        j.req.Script,
			TextFile:    caption,
			FontFile:    r.cfg.FontFile,
			FontSize:    r.cfg.Caption.FontSize,
			Color:       r.cfg.Caption.Color,
			LineSpacing: r.cfg.Caption.LineSpacing,
			Y:           r.cfg.Caption.Y,
		},
	}
	return nil
}

func (r *Renderer) encode(ctx context.Context, j *job) error {
	j.comp.Audio = j.audio
	j.comp.Image = j.image
	j.comp.Texts = j.texts
	j.comp.VideoCodec = r.cfg.VideoCodec
	j.comp.AudioCodec = r.cfg.AudioCodec
	j.comp.Output = filepath.Join(j.workdir, r.cfg.VideoFile)
	if err := j.comp.Validate(); err != nil {
		return err
	}
	return r.enc.Encode(ctx, j.comp)
}

func (j *job) writeScratch(name, content string) (string, error) {
	path := filepath.Join(j.workdir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	j.scratch = append(j.scratch, path)
	return path, nil
}

func (j *job) cleanup(log *logrus.Entry) {
	for _, p := range j.scratch {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.WithError(err).WithField("path", p).Warn("failed to remove scratch file")
		}
	}
}
