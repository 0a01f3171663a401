package gtts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	DefaultEndpoint = "https://translate.google.com/translate_tts"
	// MaxChunk is the longest text the translate endpoint accepts per request.
	MaxChunk  = 100
	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

// Client speaks text through Google Translate's keyless TTS endpoint. The endpoint returns
// MP3 segments that can be concatenated as is.
type Client struct {
	Endpoint   string
	Language   string
	HTTPClient *http.Client
}

func New(endpoint, language string, httpClient *http.Client) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if language == "" {
		language = "en"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{Endpoint: endpoint, Language: language, HTTPClient: httpClient}
}

func (c *Client) Name() string { return "gtts" }

// Synthesize writes the MP3 narration of text to w.
func (c *Client) Synthesize(ctx context.Context, text string, w io.Writer) error {
	chunks := Chunks(text, MaxChunk)
	if len(chunks) == 0 {
		return fmt.Errorf("no text to speak")
	}
	for i, chunk := range chunks {
		if err := c.fetch(ctx, chunk, i, len(chunks), w); err != nil {
			return fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, chunk string, idx, total int, w io.Writer) error {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("q", chunk)
	params.Set("tl", c.Language)
	params.Set("total", strconv.Itoa(total))
	params.Set("idx", strconv.Itoa(idx))
	params.Set("textlen", strconv.Itoa(utf8.RuneCountInString(chunk)))
	params.Set("client", "tw-ob")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tts returned status: %s", resp.Status)
	}
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return fmt.Errorf("failed to write audio: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("tts returned no audio")
	}
	return nil
}

// Chunks splits text on whitespace into pieces of at most max runes. Words longer than max
// are cut.
func Chunks(text string, max int) []string {
	var (
		out []string
		cur strings.Builder
		n   int
	)
	flush := func() {
		if n > 0 {
			out = append(out, cur.String())
			cur.Reset()
			n = 0
		}
	}
	for _, word := range strings.Fields(text) {
		for utf8.RuneCountInString(word) > max {
			flush()
			runes := []rune(word)
			out = append(out, string(runes[:max]))
			word = string(runes[max:])
		}
		if word == "" {
			continue
		}
		wl := utf8.RuneCountInString(word)
		if n > 0 && n+1+wl > max {
			flush()
		}
		if n > 0 {
			cur.WriteByte(' ')
			n++
		}
		cur.WriteString(word)
		n += wl
		// end a chunk at a sentence boundary once it is reasonably long
		if n >= max/2 && strings.ContainsAny(word[len(word)-1:], ".!?") {
			flush()
		}
	}
	flush()
	return out
}
