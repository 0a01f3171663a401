package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("NEWSAPI_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Sources.NewsAPI.Endpoint != "https://newsapi.org/v2/top-headlines" {
		t.Fatalf("unexpected endpoint %q", cfg.Sources.NewsAPI.Endpoint)
	}
	if cfg.Sources.NewsAPI.PageSize != 10 || cfg.Sources.NewsAPI.Language != "en" {
		t.Fatalf("unexpected newsapi defaults: %+v", cfg.Sources.NewsAPI)
	}
	if cfg.LLM.OpenAI.Model != "gpt-4o-mini" || cfg.LLM.ScriptWords != 60 {
		t.Fatalf("unexpected llm defaults: %+v", cfg.LLM)
	}
	r := cfg.Render
	if r.Width != 720 || r.Height != 1280 || r.FPS != 24 || r.VideoCodec != "libx264" {
		t.Fatalf("unexpected canvas defaults: %+v", r)
	}
	if r.Image.Width != 680 || r.Image.Y != 280 || r.Image.Timeout != 5*time.Second {
		t.Fatalf("unexpected image defaults: %+v", r.Image)
	}
	if r.Banner.Text != "BREAKING NEWS" || r.Banner.FontSize != 80 || r.Banner.Y != 140 {
		t.Fatalf("unexpected banner defaults: %+v", r.Banner)
	}
	if r.Caption.WrapWidth != 30 || r.Caption.FontSize != 42 || r.Caption.Y != 920 || r.Caption.Color != "yellow" {
		t.Fatalf("unexpected caption defaults: %+v", r.Caption)
	}
	if r.VideoFile != "studio_output.mp4" || r.AudioFile != "voice.mp3" || r.ImageFile != "news_thumb.jpg" {
		t.Fatalf("unexpected file names: %+v", r)
	}
	if cfg.Storage.Postgres.Enabled() || cfg.Storage.Redis.Enabled() {
		t.Fatalf("expected optional storage to be disabled by default")
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "newsreel.json")
	body := `{
  "render": {"fps": 30, "output_dir": "  /tmp/reels  "},
  "llm": {"provider": "gemini", "gemini": {"model": "gemini-1.5-pro"}}
}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("NEWSREEL_RENDER_CAPTION_WRAP_WIDTH", "24")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("GEMINI_API_KEY", "gm-test")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Render.FPS != 30 {
		t.Fatalf("expected fps from file, got %d", cfg.Render.FPS)
	}
	if cfg.Render.OutputDir != "/tmp/reels" {
		t.Fatalf("expected trimmed output dir, got %q", cfg.Render.OutputDir)
	}
	if cfg.Render.Caption.WrapWidth != 24 {
		t.Fatalf("expected wrap width from env, got %d", cfg.Render.Caption.WrapWidth)
	}
	if cfg.LLM.OpenAI.APIKey != "sk-test" {
		t.Fatalf("expected OPENAI_API_KEY binding, got %q", cfg.LLM.OpenAI.APIKey)
	}
	if cfg.LLM.APIKey() != "gm-test" {
		t.Fatalf("expected gemini key for gemini provider, got %q", cfg.LLM.APIKey())
	}
	if cfg.LLM.Gemini.Model != "gemini-1.5-pro" {
		t.Fatalf("unexpected gemini model %q", cfg.LLM.Gemini.Model)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error for missing explicit config file")
	}
}

func TestRenderValidate(t *testing.T) {
	valid := RenderConfig{
		Width: 720, Height: 1280, FPS: 24, VideoCodec: "libx264",
		AudioFile: "voice.mp3", ImageFile: "news_thumb.jpg", VideoFile: "studio_output.mp4",
		Image:   ImageConfig{Width: 680},
		Banner:  BannerConfig{FontSize: 80},
		Caption: CaptionConfig{FontSize: 42, WrapWidth: 30},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	odd := valid
	odd.Width = 721
	if err := odd.Validate(); err == nil {
		t.Fatalf("expected error for odd width")
	}

	nested := valid
	nested.VideoFile = "../escape.mp4"
	if err := nested.Validate(); err == nil {
		t.Fatalf("expected error for video file with a directory")
	}

	wide := valid
	wide.Image.Width = 900
	if err := wide.Validate(); err == nil {
		t.Fatalf("expected error for image wider than canvas")
	}
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", User: "reel", Password: "pw", DBName: "newsreel"}
	if got := p.DSN(); got != "postgres://reel:pw@db:5432/newsreel?sslmode=disable" {
		t.Fatalf("unexpected dsn %q", got)
	}
	p.URL = "postgres://elsewhere/db"
	if got := p.DSN(); got != p.URL {
		t.Fatalf("expected url to win, got %q", got)
	}
	if err := (PostgresConfig{Host: "db"}).Validate(); err == nil {
		t.Fatalf("expected dbname to be required")
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}
