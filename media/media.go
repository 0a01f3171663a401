// Package media describes a finished video as data: a canvas, an optional image and text
// layers in z-order, the narration track and the output file. Encoders turn a Composition
// into a file.
package media

import (
	"errors"
	"fmt"
	"time"
)

type Canvas struct {
	Width  int
	Height int
	FPS    int
	Color  string
}

// ImageLayer is a still image scaled to Width (aspect kept), centred horizontally with its
// top edge at Y.
type ImageLayer struct {
	Path  string
	Width int
	Y     int
}

// TextLayer is a block of text centred horizontally with its top edge at Y. The text is read
// from TextFile so it never has to be escaped into a filter graph.
type TextLayer struct {
	Name        string
	Text        string
	TextFile    string
	FontFile    string
	FontSize    int
	Color       string
	BoxColor    string
	BoxBorder   int
	LineSpacing int
	Y           int
}

type Composition struct {
	Canvas     Canvas
	Duration   time.Duration
	Audio      string
	Image      *ImageLayer
	Texts      []TextLayer
	VideoCodec string
	AudioCodec string
	Output     string
}

// Layers lists layer names bottom to top.
func (c Composition) Layers() []string {
	out := []string{"background"}
	if c.Image != nil {
		out = append(out, "image")
	}
	for _, t := range c.Texts {
		out = append(out, t.Name)
	}
	return out
}

func (c Composition) Validate() error {
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 || c.Canvas.FPS <= 0 {
		return fmt.Errorf("invalid canvas %dx%d@%d", c.Canvas.Width, c.Canvas.Height, c.Canvas.FPS)
	}
	if c.Duration <= 0 {
		return errors.New("composition needs a positive duration")
	}
	if c.Audio == "" {
		return errors.New("composition needs a narration track")
	}
	if c.Output == "" {
		return errors.New("composition needs an output path")
	}
	if c.Image != nil && (c.Image.Path == "" || c.Image.Width <= 0) {
		return errors.New("image layer needs a path and a width")
	}
	for _, t := range c.Texts {
		if t.TextFile == "" || t.FontSize <= 0 {
			return fmt.Errorf("text layer %q needs a text file and a font size", t.Name)
		}
	}
	return nil
}
