// Package ffmpeg renders media compositions and probes media files by shelling out to the
// ffmpeg and ffprobe binaries.
package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/mohammad-safakhou/newsreel/media"
)

// Runner executes a binary and returns its stdout.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, tail(stderr.String(), 512))
	}
	return stdout.Bytes(), nil
}

type FFmpeg struct {
	FFmpegPath  string
	FFprobePath string
	Runner      Runner
}

func New(ffmpegPath, ffprobePath string) *FFmpeg {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &FFmpeg{FFmpegPath: ffmpegPath, FFprobePath: ffprobePath, Runner: execRunner{}}
}

func (f *FFmpeg) runner() Runner {
	if f.Runner == nil {
		return execRunner{}
	}
	return f.Runner
}

// Duration returns the container duration of a media file.
func (f *FFmpeg) Duration(ctx context.Context, path string) (time.Duration, error) {
	out, err := f.runner().Run(ctx, f.FFprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "json",
		path)
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w", err)
	}
	var probe struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(out, &probe); err != nil {
		return 0, fmt.Errorf("parse ffprobe output: %w", err)
	}
	secs, err := strconv.ParseFloat(strings.TrimSpace(probe.Format.Duration), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", probe.Format.Duration, err)
	}
	if secs <= 0 {
		return 0, fmt.Errorf("%s has no duration", path)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

// Dimensions returns the size of the first video stream; for still images this also proves
// ffmpeg can decode the file.
func (f *FFmpeg) Dimensions(ctx context.Context, path string) (int, int, error) {
	out, err := f.runner().Run(ctx, f.FFprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "json",
		path)
	if err != nil {
		return 0, 0, fmt.Errorf("ffprobe dimensions: %w", err)
	}
	var probe struct {
		Streams []struct {
			Width  int `json:"width"`
			Height int `json:"height"`
		} `json:"streams"`
	}
	if err := json.Unmarshal(out, &probe); err != nil {
		return 0, 0, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if len(probe.Streams) == 0 || probe.Streams[0].Width <= 0 || probe.Streams[0].Height <= 0 {
		return 0, 0, fmt.Errorf("%s has no decodable picture", path)
	}
	return probe.Streams[0].Width, probe.Streams[0].Height, nil
}

// Encode renders the composition. Output is written next to the target and renamed over it,
// so a failed encode never leaves a truncated video behind.
func (f *FFmpeg) Encode(ctx context.Context, c media.Composition) error {
	if err := c.Validate(); err != nil {
		return err
	}
	tmp := c.Output + ".part"
	if _, err := f.runner().Run(ctx, f.FFmpegPath, Args(c, tmp)...); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("ffmpeg encode: %w", err)
	}
	if err := os.Rename(tmp, c.Output); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("move encoded video: %w", err)
	}
	return nil
}

// Args builds the ffmpeg command line for c writing an MP4 to output.
func Args(c media.Composition, output string) []string {
	secs := seconds(c.Duration)
	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-f", "lavfi",
		"-i", fmt.Sprintf("color=c=%s:s=%dx%d:r=%d:d=%s", colorOr(c.Canvas.Color, "black"), c.Canvas.Width, c.Canvas.Height, c.Canvas.FPS, secs),
		"-i", c.Audio,
	}
	if c.Image != nil {
		args = append(args, "-i", c.Image.Path)
	}

	vcodec := c.VideoCodec
	if vcodec == "" {
		vcodec = "libx264"
	}
	acodec := c.AudioCodec
	if acodec == "" {
		acodec = "aac"
	}

	args = append(args,
		"-filter_complex", FilterGraph(c),
		"-map", "[vout]",
		"-map", "1:a",
		"-c:v", vcodec,
		"-pix_fmt", "yuv420p",
		"-r", strconv.Itoa(c.Canvas.FPS),
		"-c:a", acodec,
		"-t", secs,
		"-movflags", "+faststart",
		"-f", "mp4",
		output,
	)
	return args
}

// FilterGraph layers the composition bottom to top: background, image, then each text layer.
func FilterGraph(c media.Composition) string {
	var chains []string
	cur := "[0:v]"
	step := 0
	next := func() string {
		step++
		return fmt.Sprintf("[v%d]", step)
	}

	if c.Image != nil {
		chains = append(chains, fmt.Sprintf("[2:v]scale=%d:-2[img]", c.Image.Width))
		out := next()
		chains = append(chains, fmt.Sprintf("%s[img]overlay=x=(W-w)/2:y=%d:eof_action=repeat%s", cur, c.Image.Y, out))
		cur = out
	}
	for _, t := range c.Texts {
		out := next()
		chains = append(chains, cur+drawtext(t)+out)
		cur = out
	}
	chains = append(chains, cur+"null[vout]")
	return strings.Join(chains, ";")
}

func drawtext(t media.TextLayer) string {
	opts := []string{}
	if t.FontFile != "" {
		opts = append(opts, "fontfile="+escape(t.FontFile))
	}
	opts = append(opts,
		"textfile="+escape(t.TextFile),
		"expansion=none",
		"fontsize="+strconv.Itoa(t.FontSize),
		"fontcolor="+escape(colorOr(t.Color, "white")),
		"x=(w-text_w)/2",
		"y="+strconv.Itoa(t.Y),
	)
	if t.LineSpacing > 0 {
		opts = append(opts, "line_spacing="+strconv.Itoa(t.LineSpacing))
	}
	if t.BoxColor != "" {
		border := t.BoxBorder
		if border <= 0 {
			border = 10
		}
		opts = append(opts, "box=1", "boxcolor="+escape(t.BoxColor), "boxborderw="+strconv.Itoa(border))
	}
	return "drawtext=" + strings.Join(opts, ":")
}

var (
	optionEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, `:`, `\:`)
	graphEscaper  = strings.NewReplacer(`\`, `\\`, `'`, `\'`, `[`, `\[`, `]`, `\]`, `,`, `\,`, `;`, `\;`)
)

// escape applies both escaping levels a filter option value goes through inside
// -filter_complex.
func escape(v string) string {
	return graphEscaper.Replace(optionEscaper.Replace(v))
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}

func colorOr(c, def string) string {
	if strings.TrimSpace(c) == "" {
		return def
	}
	return c
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
