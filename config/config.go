package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for newsreel
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	Sources   SourcesConfig   `mapstructure:"sources"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Speech    SpeechConfig    `mapstructure:"speech"`
	Render    RenderConfig    `mapstructure:"render"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Storage   StorageConfig   `mapstructure:"storage"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"` // text or json
	LogFile   string `mapstructure:"log_file"`
}

func (g GeneralConfig) Validate() error {
	switch strings.ToLower(g.LogFormat) {
	case "", "text", "json":
		return nil
	}
	return fmt.Errorf("general.log_format must be text or json, got %q", g.LogFormat)
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address    string        `mapstructure:"address"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

// SourcesConfig contains news source configurations
type SourcesConfig struct {
	NewsAPI NewsAPIConfig `mapstructure:"newsapi"`
}

// NewsAPIConfig contains NewsAPI settings
type NewsAPIConfig struct {
	APIKey     string        `mapstructure:"api_key"`
	Endpoint   string        `mapstructure:"endpoint"`
	Language   string        `mapstructure:"language"`
	PageSize   int           `mapstructure:"page_size"`
	MaxResults int           `mapstructure:"max_results"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

func (n NewsAPIConfig) Validate() error {
	if strings.TrimSpace(n.Endpoint) == "" {
		return fmt.Errorf("sources.newsapi.endpoint required")
	}
	if n.PageSize <= 0 || n.PageSize > 100 {
		return fmt.Errorf("sources.newsapi.page_size must be between 1 and 100")
	}
	if n.MaxResults <= 0 {
		return fmt.Errorf("sources.newsapi.max_results must be > 0")
	}
	return nil
}

// LLMConfig selects and configures the script generator
type LLMConfig struct {
	Provider    string       `mapstructure:"provider"` // openai or gemini
	ScriptWords int          `mapstructure:"script_words"`
	OpenAI      OpenAIConfig `mapstructure:"openai"`
	Gemini      GeminiConfig `mapstructure:"gemini"`
}

type OpenAIConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float32       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type GeminiConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature"`
}

// APIKey returns the generation key configured for the selected provider.
func (l LLMConfig) APIKey() string {
	if strings.EqualFold(l.Provider, "gemini") {
		return l.Gemini.APIKey
	}
	return l.OpenAI.APIKey
}

func (l LLMConfig) Validate() error {
	switch strings.ToLower(l.Provider) {
	case "openai", "gemini":
	default:
		return fmt.Errorf("llm.provider must be openai or gemini, got %q", l.Provider)
	}
	if l.ScriptWords <= 0 {
		return fmt.Errorf("llm.script_words must be > 0")
	}
	return nil
}

// SpeechConfig selects the narration voice
type SpeechConfig struct {
	Provider string             `mapstructure:"provider"` // gtts or openai
	Language string             `mapstructure:"language"`
	Timeout  time.Duration      `mapstructure:"timeout"`
	GTTS     GTTSConfig         `mapstructure:"gtts"`
	OpenAI   OpenAISpeechConfig `mapstructure:"openai"`
}

type GTTSConfig struct {
	Endpoint string `mapstructure:"endpoint"`
}

type OpenAISpeechConfig struct {
	Model string  `mapstructure:"model"`
	Voice string  `mapstructure:"voice"`
	Speed float64 `mapstructure:"speed"`
}

func (s SpeechConfig) Validate() error {
	switch strings.ToLower(s.Provider) {
	case "gtts", "openai":
		return nil
	}
	return fmt.Errorf("speech.provider must be gtts or openai, got %q", s.Provider)
}

// RenderConfig describes the canvas, the overlays and where artifacts are written
type RenderConfig struct {
	OutputDir    string        `mapstructure:"output_dir"`
	FFmpegPath   string        `mapstructure:"ffmpeg_path"`
	FFprobePath  string        `mapstructure:"ffprobe_path"`
	Width        int           `mapstructure:"width"`
	Height       int           `mapstructure:"height"`
	FPS          int           `mapstructure:"fps"`
	VideoCodec   string        `mapstructure:"video_codec"`
	AudioCodec   string        `mapstructure:"audio_codec"`
	Background   string        `mapstructure:"background"`
	FontFile     string        `mapstructure:"font_file"`
	AudioFile    string        `mapstructure:"audio_file"`
	ImageFile    string        `mapstructure:"image_file"`
	VideoFile    string        `mapstructure:"video_file"`
	DownloadName string        `mapstructure:"download_name"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Image        ImageConfig   `mapstructure:"image"`
	Banner       BannerConfig  `mapstructure:"banner"`
	Caption      CaptionConfig `mapstructure:"caption"`
}

type ImageConfig struct {
	Width    int           `mapstructure:"width"`
	Y        int           `mapstructure:"y"`
	Timeout  time.Duration `mapstructure:"timeout"`
	MaxBytes int64         `mapstructure:"max_bytes"`
}

type BannerConfig struct {
	Text     string `mapstructure:"text"`
	FontSize int    `mapstructure:"font_size"`
	Color    string `mapstructure:"color"`
	BoxColor string `mapstructure:"box_color"`
	Y        int    `mapstructure:"y"`
}

type CaptionConfig struct {
	FontSize    int    `mapstructure:"font_size"`
	Color       string `mapstructure:"color"`
	Y           int    `mapstructure:"y"`
	WrapWidth   int    `mapstructure:"wrap_width"`
	LineSpacing int    `mapstructure:"line_spacing"`
}

// Normalize fills values that cannot be left empty.
func (r RenderConfig) Normalize() RenderConfig {
	r.OutputDir = strings.TrimSpace(r.OutputDir)
	if r.OutputDir == "" {
		r.OutputDir = "outputs"
	}
	if r.FFmpegPath == "" {
		r.FFmpegPath = "ffmpeg"
	}
	if r.FFprobePath == "" {
		r.FFprobePath = "ffprobe"
	}
	if r.DownloadName == "" {
		r.DownloadName = "news_broadcast.mp4"
	}
	if r.Image.Timeout <= 0 {
		r.Image.Timeout = 5 * time.Second
	}
	if r.Image.MaxBytes <= 0 {
		r.Image.MaxBytes = 10 << 20
	}
	return r
}

func (r RenderConfig) Validate() error {
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("render.width and render.height must be > 0")
	}
	// yuv420p needs even dimensions
	if r.Width%2 != 0 || r.Height%2 != 0 {
		return fmt.Errorf("render.width and render.height must be even")
	}
	if r.FPS <= 0 {
		return fmt.Errorf("render.fps must be > 0")
	}
	if strings.TrimSpace(r.VideoCodec) == "" {
		return fmt.Errorf("render.video_codec required")
	}
	for name, file := range map[string]string{"audio_file": r.AudioFile, "image_file": r.ImageFile, "video_file": r.VideoFile} {
		if strings.TrimSpace(file) == "" || filepath.Base(file) != file {
			return fmt.Errorf("render.%s must be a plain file name", name)
		}
	}
	if r.Image.Width <= 0 || r.Image.Width > r.Width {
		return fmt.Errorf("render.image.width must be between 1 and render.width")
	}
	if r.Banner.FontSize <= 0 || r.Caption.FontSize <= 0 {
		return fmt.Errorf("render banner and caption font sizes must be > 0")
	}
	if r.Caption.WrapWidth <= 0 {
		return fmt.Errorf("render.caption.wrap_width must be > 0")
	}
	return nil
}

// TelemetryConfig contains monitoring settings
type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	MetricsPath string `mapstructure:"metrics_path"`
}

func (t TelemetryConfig) Validate() error {
	if t.Enabled && !strings.HasPrefix(t.MetricsPath, "/") {
		return fmt.Errorf("telemetry.metrics_path must start with / when telemetry is enabled")
	}
	return nil
}

// StorageConfig contains the optional render ledger and event stream settings
type StorageConfig struct {
	Redis    RedisConfig    `mapstructure:"redis"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// RedisConfig contains Redis connection settings
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Stream   string        `mapstructure:"stream"`
	MaxLen   int64         `mapstructure:"max_len"`
}

// Enabled reports whether render events should be published.
func (r RedisConfig) Enabled() bool { return strings.TrimSpace(r.Host) != "" }

func (r RedisConfig) Validate() error {
	if !r.Enabled() {
		return nil
	}
	if strings.TrimSpace(r.Port) == "" {
		return fmt.Errorf("storage.redis.port required")
	}
	if strings.TrimSpace(r.Stream) == "" {
		return fmt.Errorf("storage.redis.stream required")
	}
	return nil
}

// PostgresConfig contains Postgres connection settings
type PostgresConfig struct {
	URL      string        `mapstructure:"url"`
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	User     string        `mapstructure:"user"`
	Password string        `mapstructure:"password"`
	DBName   string        `mapstructure:"dbname"`
	SSLMode  string        `mapstructure:"sslmode"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Enabled reports whether the render ledger is configured.
func (p PostgresConfig) Enabled() bool {
	return strings.TrimSpace(p.URL) != "" || strings.TrimSpace(p.Host) != ""
}

func (p PostgresConfig) Validate() error {
	if !p.Enabled() || strings.TrimSpace(p.URL) != "" {
		return nil
	}
	if strings.TrimSpace(p.DBName) == "" {
		return fmt.Errorf("storage.postgres.dbname required when url is not provided")
	}
	return nil
}

// DSN builds a lib/pq connection string.
func (p PostgresConfig) DSN() string {
	if p.URL != "" {
		return p.URL
	}
	port := p.Port
	if port == "" {
		port = "5432"
	}
	ssl := p.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", p.User, p.Password, p.Host, port, p.DBName, ssl)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("general.log_level", "info")
	v.SetDefault("general.log_format", "text")
	v.SetDefault("general.log_file", "")

	v.SetDefault("server.address", ":10001")
	v.SetDefault("server.session_ttl", 2*time.Hour)

	v.SetDefault("sources.newsapi.api_key", "")
	v.SetDefault("sources.newsapi.endpoint", "https://newsapi.org/v2/top-headlines")
	v.SetDefault("sources.newsapi.language", "en")
	v.SetDefault("sources.newsapi.page_size", 10)
	v.SetDefault("sources.newsapi.max_results", 10)
	v.SetDefault("sources.newsapi.timeout", 15*time.Second)

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.script_words", 60)
	v.SetDefault("llm.openai.api_key", "")
	v.SetDefault("llm.openai.base_url", "")
	v.SetDefault("llm.openai.model", "gpt-4o-mini")
	v.SetDefault("llm.openai.temperature", 0)
	v.SetDefault("llm.openai.max_tokens", 0)
	v.SetDefault("llm.openai.timeout", 90*time.Second)
	v.SetDefault("llm.gemini.api_key", "")
	v.SetDefault("llm.gemini.model", "gemini-2.0-flash")
	v.SetDefault("llm.gemini.temperature", 0.7)

	v.SetDefault("speech.provider", "gtts")
	v.SetDefault("speech.language", "en")
	v.SetDefault("speech.timeout", 60*time.Second)
	v.SetDefault("speech.gtts.endpoint", "https://translate.google.com/translate_tts")
	v.SetDefault("speech.openai.model", "tts-1")
	v.SetDefault("speech.openai.voice", "alloy")
	v.SetDefault("speech.openai.speed", 1.0)

	v.SetDefault("render.output_dir", "outputs")
	v.SetDefault("render.ffmpeg_path", "ffmpeg")
	v.SetDefault("render.ffprobe_path", "ffprobe")
	v.SetDefault("render.width", 720)
	v.SetDefault("render.height", 1280)
	v.SetDefault("render.fps", 24)
	v.SetDefault("render.video_codec", "libx264")
	v.SetDefault("render.audio_codec", "aac")
	v.SetDefault("render.background", "0x141414")
	v.SetDefault("render.font_file", "")
	v.SetDefault("render.audio_file", "voice.mp3")
	v.SetDefault("render.image_file", "news_thumb.jpg")
	v.SetDefault("render.video_file", "studio_output.mp4")
	v.SetDefault("render.download_name", "news_broadcast.mp4")
	v.SetDefault("render.timeout", 10*time.Minute)
	v.SetDefault("render.image.width", 680)
	v.SetDefault("render.image.y", 280)
	v.SetDefault("render.image.timeout", 5*time.Second)
	v.SetDefault("render.image.max_bytes", 10<<20)
	v.SetDefault("render.banner.text", "BREAKING NEWS")
	v.SetDefault("render.banner.font_size", 80)
	v.SetDefault("render.banner.color", "white")
	v.SetDefault("render.banner.box_color", "red")
	v.SetDefault("render.banner.y", 140)
	v.SetDefault("render.caption.font_size", 42)
	v.SetDefault("render.caption.color", "yellow")
	v.SetDefault("render.caption.y", 920)
	v.SetDefault("render.caption.wrap_width", 30)
	v.SetDefault("render.caption.line_spacing", 8)

	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("telemetry.metrics_path", "/metrics")

	v.SetDefault("storage.redis.host", "")
	v.SetDefault("storage.redis.port", "6379")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.timeout", 5*time.Second)
	v.SetDefault("storage.redis.stream", "newsreel:renders")
	v.SetDefault("storage.redis.max_len", 10000)
	v.SetDefault("storage.postgres.url", "")
	v.SetDefault("storage.postgres.host", "")
	v.SetDefault("storage.postgres.port", "5432")
	v.SetDefault("storage.postgres.user", "")
	v.SetDefault("storage.postgres.password", "")
	v.SetDefault("storage.postgres.dbname", "")
	v.SetDefault("storage.postgres.sslmode", "disable")
	v.SetDefault("storage.postgres.timeout", 5*time.Second)
}

// Load reads config.json (or the file at path), NEWSREEL_* environment variables and the
// usual provider key variables. A missing config file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config") // name of config file (without extension)
	v.SetConfigType("json")
	setDefaults(v)

	if path == "" {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		if exe, err := os.Executable(); err == nil {
			v.AddConfigPath(filepath.Dir(exe))
		}
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("NEWSREEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv() // NEWSREEL_RENDER_FPS, NEWSREEL_LLM_OPENAI_MODEL, ...

	// plain provider variables, as found in most .env files
	_ = v.BindEnv("sources.newsapi.api_key", "NEWSREEL_SOURCES_NEWSAPI_API_KEY", "NEWSAPI_KEY", "NEWS_API_KEY")
	_ = v.BindEnv("llm.openai.api_key", "NEWSREEL_LLM_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("llm.gemini.api_key", "NEWSREEL_LLM_GEMINI_API_KEY", "GEMINI_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Render = cfg.Render.Normalize()

	validators := []interface{ Validate() error }{
		cfg.General,
		cfg.Sources.NewsAPI,
		cfg.LLM,
		cfg.Speech,
		cfg.Render,
		cfg.Telemetry,
		cfg.Storage.Redis,
		cfg.Storage.Postgres,
	}
	for _, val := range validators {
		if err := val.Validate(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}
