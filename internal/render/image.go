package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"github.com/mohammad-safakhou/newsreel/internal/helpers"
)

var ErrImageTooLarge = errors.New("image exceeds size limit")

// rasterTypes are the formats ffmpeg's image demuxers decode without extra codecs.
var rasterTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif", "image/bmp"}

// fetchImage downloads raw into dest, refusing anything that is not a decodable raster
// image. dest is removed again when the image is rejected.
func (r *Renderer) fetchImage(ctx context.Context, raw, dest string) (err error) {
	u, err := helpers.ImageURL(raw)
	if err != nil {
		return err
	}

	dlCtx, cancel := context.WithTimeout(ctx, r.cfg.Image.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(dlCtx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build image request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("image request returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, r.cfg.Image.MaxBytes+1))
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	if int64(len(body)) > r.cfg.Image.MaxBytes {
		return ErrImageTooLarge
	}
	mt := mimetype.Detect(body)
	if !mimetype.EqualsAny(mt.String(), rasterTypes...) {
		return fmt.Errorf("unsupported image content %s", mt.String())
	}

	if err := os.WriteFile(dest, body, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(dest)
		}
	}()

	w, h, err := r.probe.Dimensions(ctx, dest)
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	if w <= 0 || h <= 0 {
		return fmt.Errorf("image has no size")
	}
	return nil
}
