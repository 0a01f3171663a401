package media

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validComposition() Composition {
	return Composition{
		Canvas:   Canvas{Width: 720, Height: 1280, FPS: 24, Color: "0x141414"},
		Duration: 12 * time.Second,
		Audio:    "voice.mp3",
		Image:    &ImageLayer{Path: "news_thumb.jpg", Width: 680, Y: 280},
		Texts: []TextLayer{
			{Name: "banner", TextFile: "banner.txt", FontSize: 80},
			{Name: "caption", TextFile: "caption.txt", FontSize: 42},
		},
		Output: "studio_output.mp4",
	}
}

func TestLayersZOrder(t *testing.T) {
	c := validComposition()
	require.Equal(t, []string{"background", "image", "banner", "caption"}, c.Layers())

	c.Image = nil
	require.Equal(t, []string{"background", "banner", "caption"}, c.Layers())
}

func TestValidate(t *testing.T) {
	require.NoError(t, validComposition().Validate())

	c := validComposition()
	c.Duration = 0
	require.Error(t, c.Validate())

	c = validComposition()
	c.Audio = ""
	require.Error(t, c.Validate())

	c = validComposition()
	c.Texts[1].TextFile = ""
	require.Error(t, c.Validate())
}
