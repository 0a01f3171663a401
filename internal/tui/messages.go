package tui

import (
	"github.com/mohammad-safakhou/newsreel/internal/render"
	"github.com/mohammad-safakhou/newsreel/models"
	"github.com/mohammad-safakhou/newsreel/news"
)

type headlinesMsg struct {
	res news.Result
	err error
}

type progressMsg struct {
	progress render.Progress
}

type producedMsg struct {
	prod *models.Production
	err  error
}

type item struct {
	headline models.Headline
}

func (i item) Title() string { return i.headline.Title }

func (i item) Description() string {
	d := i.headline.Source
	if i.headline.HasImage() {
		if d != "" {
			d += " · "
		}
		d += "with image"
	}
	return d
}

func (i item) FilterValue() string { return i.headline.Title }
