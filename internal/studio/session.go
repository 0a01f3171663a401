package studio

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mohammad-safakhou/newsreel/internal/render"
	"github.com/mohammad-safakhou/newsreel/models"
	"github.com/mohammad-safakhou/newsreel/news"
	"github.com/sirupsen/logrus"
)

// Credentials are the operator's two keys. They live only in memory.
type Credentials struct {
	NewsAPIKey string
	LLMKey     string
}

// String never prints the keys.
func (c Credentials) String() string {
	return "Credentials{news:" + mask(c.NewsAPIKey) + " llm:" + mask(c.LLMKey) + "}"
}

func mask(k string) string {
	if strings.TrimSpace(k) == "" {
		return "unset"
	}
	return "set"
}

// Session is one operator's state: credentials, the fetched headlines, the selection and
// the last production. It is safe for concurrent use; at most one production runs at a time.
type Session struct {
	studio  *Studio
	id      string
	workdir string
	log     *logrus.Entry

	mu        sync.Mutex
	creds     Credentials
	headlines []models.Headline
	selected  *models.Headline
	latest    *models.Production
	rendering bool
}

func (s *Session) ID() string { return s.id }

// Workdir is where this session's artifacts are written.
func (s *Session) Workdir() string { return s.workdir }

func (s *Session) SetCredentials(c Credentials) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = Credentials{
		NewsAPIKey: strings.TrimSpace(c.NewsAPIKey),
		LLMKey:     strings.TrimSpace(c.LLMKey),
	}
}

func (s *Session) Credentials() Credentials {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds
}

// FetchHeadlines replaces the headline list and clears the selection. On failure the list
// is left empty.
func (s *Session) FetchHeadlines(ctx context.Context) (news.Result, error) {
	key := s.Credentials().NewsAPIKey
	if key == "" {
		return news.Result{}, models.ErrMissingNewsKey
	}

	res, err := s.studio.headlines(key).Fetch(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
	if err != nil {
		s.headlines = nil
		outcome := "failed"
		if errors.Is(err, models.ErrNoHeadlines) {
			outcome = "empty"
		}
		s.studio.metrics.Fetch(outcome)
		s.log.WithError(err).Warn("headline fetch failed")
		return news.Result{Dropped: res.Dropped}, err
	}
	s.headlines = res.Headlines
	s.studio.metrics.Fetch("ok")
	s.log.WithFields(logrus.Fields{"headlines": len(res.Headlines), "dropped": res.Dropped}).Info("headlines fetched")
	return res, nil
}

func (s *Session) Headlines() []models.Headline {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Headline(nil), s.headlines...)
}

// Select chooses the headline with exactly this title.
func (s *Session) Select(title string) (models.Headline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.headlines) == 0 {
		return models.Headline{}, models.ErrNoHeadlines
	}
	for i := range s.headlines {
		if s.headlines[i].Title == title {
			h := s.headlines[i]
			s.selected = &h
			return h, nil
		}
	}
	return models.Headline{}, models.ErrHeadlineNotFound
}

// SelectIndex chooses the i-th headline, counting from zero.
func (s *Session) SelectIndex(i int) (models.Headline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.headlines) == 0 {
		return models.Headline{}, models.ErrNoHeadlines
	}
	if i < 0 || i >= len(s.headlines) {
		return models.Headline{}, models.ErrHeadlineNotFound
	}
	h := s.headlines[i]
	s.selected = &h
	return h, nil
}

func (s *Session) Selected() (models.Headline, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return models.Headline{}, false
	}
	return *s.selected, true
}

// Rendering reports whether a production is running.
func (s *Session) Rendering() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rendering
}

func (s *Session) Latest() (*models.Production, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		return nil, false
	}
	p := *s.latest
	return &p, true
}

// Produce writes a script for the selected headline and renders it. Failures are returned
// as *render.StageError; gate failures (no selection, no key, busy) are returned as the
// models sentinel errors before anything is called.
func (s *Session) Produce(ctx context.Context, obs render.Observer) (*models.Production, error) {
	s.mu.Lock()
	switch {
	case s.selected == nil:
		s.mu.Unlock()
		return nil, models.ErrNoSelection
	case s.creds.LLMKey == "":
		s.mu.Unlock()
		return nil, models.ErrMissingLLMKey
	case s.rendering:
		s.mu.Unlock()
		return nil, models.ErrRenderInProgress
	}
	s.rendering = true
	headline := *s.selected
	key := s.creds.LLMKey
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.rendering = false
		s.mu.Unlock()
	}()

	if obs == nil {
		obs = render.ObserverFunc(func(render.Progress) {})
	}
	id := uuid.NewString()
	log := s.log.WithFields(logrus.Fields{"production": id, "headline": headline.Title})
	rec := models.RenderRecord{ID: id, SessionID: s.id, Headline: headline.Title}

	fail := func(stage render.Stage, err error) (*models.Production, error) {
		var stageErr *render.StageError
		if !errors.As(err, &stageErr) {
			stageErr = &render.StageError{Stage: stage, Err: err}
		}
		rec.Status = models.RenderFailed
		rec.FailedStage = string(stageErr.Stage)
		rec.Error = stageErr.Err.Error()
		rec.CreatedAt = time.Now().UTC()
		s.studio.record(ctx, log, rec)
		log.WithError(stageErr).Error("production failed")
		return nil, stageErr
	}

	obs.Progress(render.Progress{Percent: 0, Label: render.LabelInit})
	obs.Progress(render.Progress{Percent: 20, Label: render.LabelScript, Stage: render.StageScript})

	writer, err := s.studio.writer(key)
	if err != nil {
		return fail(render.StageScript, err)
	}
	start := time.Now()
	script, err := writer.WriteScript(ctx, headline.Title)
	s.studio.metrics.Stage(string(render.StageScript), time.Since(start))
	if err != nil {
		s.studio.metrics.Script(writer.Name(), "failed")
		return fail(render.StageScript, err)
	}
	s.studio.metrics.Script(writer.Name(), "ok")
	rec.Words = models.WordCount(script)

	voice, err := s.studio.voice(key)
	if err != nil {
		return fail(render.StageNarrate, err)
	}
	res, err := s.studio.renderer(voice, log).Render(ctx, render.Request{
		Script:   script,
		ImageURL: headline.ImageURL,
		Workdir:  s.workdir,
	}, obs)
	if err != nil {
		return fail(render.StageEncode, err)
	}

	prod := &models.Production{
		ID:        id,
		SessionID: s.id,
		Headline:  headline,
		Script:    script,
		Words:     rec.Words,
		Duration:  res.Duration,
		VideoPath: res.VideoPath,
		ImageUsed: res.ImageUsed,
		CreatedAt: time.Now().UTC(),
	}
	if res.ImageErr != nil {
		prod.ImageSkip = res.ImageErr.Error()
	}

	s.mu.Lock()
	s.latest = prod
	s.mu.Unlock()

	rec.Status = models.RenderCompleted
	rec.VideoPath = prod.VideoPath
	rec.Duration = prod.Duration
	rec.ImageUsed = prod.ImageUsed
	rec.CreatedAt = prod.CreatedAt
	s.studio.record(ctx, log, rec)

	obs.Progress(render.Progress{Percent: 100, Label: render.LabelDone})
	log.WithFields(logrus.Fields{"duration": prod.Duration.String(), "words": prod.Words, "image": prod.ImageUsed}).Info("production complete")
	return prod, nil
}
