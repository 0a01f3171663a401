package studio

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mohammad-safakhou/newsreel/config"
	"github.com/mohammad-safakhou/newsreel/internal/render"
	"github.com/mohammad-safakhou/newsreel/media"
	"github.com/mohammad-safakhou/newsreel/models"
	"github.com/mohammad-safakhou/newsreel/news"
	"github.com/mohammad-safakhou/newsreel/provider"
	"github.com/mohammad-safakhou/newsreel/speech"
	"github.com/stretchr/testify/require"
)

const parkTitle = "City Council Approves New Park"

type fakeSource struct {
	res   news.Result
	err   error
	calls int
}

func (f *fakeSource) Fetch(context.Context) (news.Result, error) {
	f.calls++
	return f.res, f.err
}

type fakeWriter struct {
	script  string
	err     error
	started chan struct{}
	release chan struct{}
}

func (w *fakeWriter) WriteScript(ctx context.Context, title string) (string, error) {
	if w.started != nil {
		close(w.started)
		<-w.release
	}
	return w.script, w.err
}

func (*fakeWriter) Name() string { return "fake" }

type fakeVoice struct{}

func (fakeVoice) Synthesize(_ context.Context, text string, w io.Writer) error {
	_, err := io.WriteString(w, text)
	return err
}

func (fakeVoice) Name() string { return "fake" }

type fakeMedia struct {
	duration time.Duration
	comp     media.Composition
}

func (m *fakeMedia) Duration(context.Context, string) (time.Duration, error) { return m.duration, nil }

func (m *fakeMedia) Dimensions(context.Context, string) (int, int, error) { return 640, 480, nil }

func (m *fakeMedia) Encode(_ context.Context, c media.Composition) error {
	m.comp = c
	return os.WriteFile(c.Output, []byte("mp4"), 0o644)
}

type memRecorder struct {
	mu   sync.Mutex
	recs []models.RenderRecord
	err  error
}

func (r *memRecorder) Record(_ context.Context, rec models.RenderRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recs = append(r.recs, rec)
	return r.err
}

func testConfig(dir string) *config.Config {
	return &config.Config{
		LLM: config.LLMConfig{Provider: "openai", ScriptWords: 60},
		Render: config.RenderConfig{
			OutputDir:  dir,
			Width:      720,
			Height:     1280,
			FPS:        24,
			VideoCodec: "libx264",
			AudioCodec: "aac",
			Background: "0x141414",
			AudioFile:  "voice.mp3",
			ImageFile:  "news_thumb.jpg",
			VideoFile:  "studio_output.mp4",
			Image:      config.ImageConfig{Width: 680, Y: 280, Timeout: 2 * time.Second, MaxBytes: 1 << 20},
			Banner:     config.BannerConfig{Text: "BREAKING NEWS", FontSize: 80, Color: "white", BoxColor: "red", Y: 140},
			Caption:    config.CaptionConfig{FontSize: 42, Color: "yellow", Y: 920, WrapWidth: 30, LineSpacing: 8},
		},
	}
}

type fixture struct {
	studio *Studio
	source *fakeSource
	writer *fakeWriter
	media  *fakeMedia
	rec    *memRecorder
	dir    string
}

func newFixture(t *testing.T, headlines ...models.Headline) *fixture {
	t.Helper()
	f := &fixture{
		source: &fakeSource{res: news.Result{Headlines: headlines}},
		writer: &fakeWriter{script: "Tonight the city council approved a new park. Residents cheered."},
		media:  &fakeMedia{duration: 14 * time.Second},
		rec:    &memRecorder{},
		dir:    t.TempDir(),
	}
	f.studio = New(testConfig(f.dir), f.media,
		WithHeadlineSource(func(string) HeadlineSource { return f.source }),
		WithWriter(func(string) (provider.Provider, error) { return f.writer, nil }),
		WithVoice(func(string) (speech.Synthesizer, error) { return fakeVoice{}, nil }),
		WithRecorders(f.rec),
	)
	return f
}

func (f *fixture) session(t *testing.T) *Session {
	t.Helper()
	s := f.studio.NewSession("s-1")
	s.SetCredentials(Credentials{NewsAPIKey: "news-key", LLMKey: "sk-test"})
	return s
}

func TestFetchNeedsNewsKey(t *testing.T) {
	f := newFixture(t, models.Headline{Title: parkTitle})
	s := f.studio.NewSession("s-1")
	s.SetCredentials(Credentials{LLMKey: "sk-test"})

	_, err := s.FetchHeadlines(context.Background())
	require.ErrorIs(t, err, models.ErrMissingNewsKey)
	require.Zero(t, f.source.calls)
}

func TestFetchFailureClearsListAndSelection(t *testing.T) {
	f := newFixture(t, models.Headline{Title: parkTitle}, models.Headline{Title: "Storm Moves East"})
	s := f.session(t)

	res, err := s.FetchHeadlines(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{parkTitle, "Storm Moves East"}, res.Titles())
	_, err = s.Select(parkTitle)
	require.NoError(t, err)

	f.source.err = errors.New("401 apiKeyInvalid")
	f.source.res = news.Result{}
	res, err = s.FetchHeadlines(context.Background())
	require.Error(t, err)
	require.Empty(t, res.Headlines)
	require.Empty(t, s.Headlines())
	_, ok := s.Selected()
	require.False(t, ok)
}

func TestSelect(t *testing.T) {
	f := newFixture(t, models.Headline{Title: parkTitle}, models.Headline{Title: "Storm Moves East"})
	s := f.session(t)

	_, err := s.Select(parkTitle)
	require.ErrorIs(t, err, models.ErrNoHeadlines)

	_, err = s.FetchHeadlines(context.Background())
	require.NoError(t, err)

	_, err = s.Select("Not A Headline")
	require.ErrorIs(t, err, models.ErrHeadlineNotFound)
	_, err = s.SelectIndex(2)
	require.ErrorIs(t, err, models.ErrHeadlineNotFound)

	h, err := s.SelectIndex(1)
	require.NoError(t, err)
	require.Equal(t, "Storm Moves East", h.Title)
	sel, ok := s.Selected()
	require.True(t, ok)
	require.Equal(t, h, sel)
}

func TestProduceGates(t *testing.T) {
	f := newFixture(t, models.Headline{Title: parkTitle})
	s := f.studio.NewSession("s-1")
	s.SetCredentials(Credentials{NewsAPIKey: "news-key"})

	_, err := s.Produce(context.Background(), nil)
	require.ErrorIs(t, err, models.ErrNoSelection)

	_, err = s.FetchHeadlines(context.Background())
	require.NoError(t, err)
	_, err = s.Select(parkTitle)
	require.NoError(t, err)

	_, err = s.Produce(context.Background(), nil)
	require.ErrorIs(t, err, models.ErrMissingLLMKey)
	require.Empty(t, f.rec.recs)
}

func TestProduceEndToEnd(t *testing.T) {
	img := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, make([]byte, 32)...))
	}))
	defer img.Close()

	f := newFixture(t, models.Headline{Title: parkTitle, ImageURL: img.URL + "/img.jpg"})
	s := f.session(t)
	_, err := s.FetchHeadlines(context.Background())
	require.NoError(t, err)
	_, err = s.Select(parkTitle)
	require.NoError(t, err)

	var percents []int
	prod, err := s.Produce(context.Background(), render.ObserverFunc(func(p render.Progress) {
		percents = append(percents, p.Percent)
	}))
	require.NoError(t, err)

	require.Equal(t, []int{0, 20, 40, 60, 65, 75, 85, 100}, percents)
	require.Equal(t, filepath.Join(f.dir, "s-1", "studio_output.mp4"), prod.VideoPath)
	require.FileExists(t, prod.VideoPath)
	require.Equal(t, 14*time.Second, prod.Duration)
	require.Equal(t, "~14s", prod.LengthLabel())
	require.Equal(t, 10, prod.Words)
	require.True(t, prod.ImageUsed)
	require.Equal(t, []string{"background", "image", "banner", "caption"}, f.media.comp.Layers())

	latest, ok := s.Latest()
	require.True(t, ok)
	require.Equal(t, prod.ID, latest.ID)

	require.Len(t, f.rec.recs, 1)
	rec := f.rec.recs[0]
	require.Equal(t, models.RenderCompleted, rec.Status)
	require.Equal(t, parkTitle, rec.Headline)
	require.Equal(t, prod.VideoPath, rec.VideoPath)
	require.False(t, s.Rendering())
}

func TestProduceScriptFailure(t *testing.T) {
	f := newFixture(t, models.Headline{Title: parkTitle})
	f.writer.err = errors.New("openai returned status 401")
	s := f.session(t)
	_, _ = s.FetchHeadlines(context.Background())
	_, _ = s.Select(parkTitle)

	_, err := s.Produce(context.Background(), nil)
	var stageErr *render.StageError
	require.ErrorAs(t, err, &stageErr)
	require.Equal(t, render.StageScript, stageErr.Stage)

	require.Len(t, f.rec.recs, 1)
	require.Equal(t, models.RenderFailed, f.rec.recs[0].Status)
	require.Equal(t, "script", f.rec.recs[0].FailedStage)
	_, ok := s.Latest()
	require.False(t, ok)
}

func TestProduceRecorderErrorsAreIgnored(t *testing.T) {
	f := newFixture(t, models.Headline{Title: parkTitle})
	f.rec.err = errors.New("ledger down")
	s := f.session(t)
	_, _ = s.FetchHeadlines(context.Background())
	_, _ = s.Select(parkTitle)

	prod, err := s.Produce(context.Background(), nil)
	require.NoError(t, err)
	require.False(t, prod.ImageUsed)
	require.NotEmpty(t, prod.ImageSkip)
}

func TestProduceOneAtATime(t *testing.T) {
	f := newFixture(t, models.Headline{Title: parkTitle})
	f.writer.started = make(chan struct{})
	f.writer.release = make(chan struct{})
	s := f.session(t)
	_, _ = s.FetchHeadlines(context.Background())
	_, _ = s.Select(parkTitle)

	done := make(chan error, 1)
	go func() {
		_, err := s.Produce(context.Background(), nil)
		done <- err
	}()
	<-f.writer.started

	_, err := s.Produce(context.Background(), nil)
	require.ErrorIs(t, err, models.ErrRenderInProgress)

	close(f.writer.release)
	require.NoError(t, <-done)
	require.False(t, s.Rendering())
}

func TestProduceTwiceOverwrites(t *testing.T) {
	f := newFixture(t, models.Headline{Title: parkTitle})
	s := f.session(t)
	_, _ = s.FetchHeadlines(context.Background())
	_, _ = s.Select(parkTitle)

	first, err := s.Produce(context.Background(), nil)
	require.NoError(t, err)
	second, err := s.Produce(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, first.VideoPath, second.VideoPath)
	require.NotEqual(t, first.ID, second.ID)
}

func TestCredentialsStringHidesKeys(t *testing.T) {
	c := Credentials{NewsAPIKey: "news-secret", LLMKey: ""}
	require.Equal(t, "Credentials{news:set llm:unset}", c.String())
}
