package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mohammad-safakhou/newsreel/internal/render"
	"github.com/mohammad-safakhou/newsreel/internal/studio"
	"github.com/mohammad-safakhou/newsreel/models"
	"github.com/sirupsen/logrus"
)

// StudioHandler exposes the three operator actions and the results view.
type StudioHandler struct {
	DownloadName string
	Log          *logrus.Entry
}

func (h *StudioHandler) Register(g *echo.Group) {
	g.PUT("/session/credentials", h.setCredentials)
	g.POST("/headlines", h.fetchHeadlines)
	g.GET("/headlines", h.listHeadlines)
	g.PUT("/selection", h.selectHeadline)
	g.POST("/productions", h.produce)
	g.GET("/productions/latest", h.latest)
}

type credentialsRequest struct {
	NewsAPIKey string `json:"news_api_key"`
	LLMKey     string `json:"llm_api_key"`
}

type headlinesResponse struct {
	Message   string            `json:"message"`
	Headlines []models.Headline `json:"headlines"`
	Dropped   int               `json:"dropped"`
}

type selectionRequest struct {
	Title string `json:"title"`
	Index *int   `json:"index"`
}

// productionView is the results view: the production plus what the page needs to show it.
type productionView struct {
	models.Production
	Length      string `json:"length"`
	VideoURL    string `json:"video_url"`
	DownloadURL string `json:"download_url"`
}

func newProductionView(p *models.Production) productionView {
	return productionView{
		Production:  *p,
		Length:      p.LengthLabel(),
		VideoURL:    "/media/video",
		DownloadURL: "/media/video?download=1",
	}
}

func (h *StudioHandler) setCredentials(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	currentSession(c).SetCredentials(studio.Credentials{NewsAPIKey: req.NewsAPIKey, LLMKey: req.LLMKey})
	return c.NoContent(http.StatusNoContent)
}

func (h *StudioHandler) fetchHeadlines(c echo.Context) error {
	res, err := currentSession(c).FetchHeadlines(c.Request().Context())
	if err != nil {
		switch {
		case errors.Is(err, models.ErrMissingNewsKey):
			return echo.NewHTTPError(http.StatusBadRequest, models.MissingNewsKeyMessage)
		case errors.Is(err, models.ErrNoHeadlines):
			return echo.NewHTTPError(http.StatusNotFound, models.NoNewsMessage)
		}
		return echo.NewHTTPError(http.StatusBadGateway, models.NoNewsMessage+" ("+err.Error()+")").SetInternal(err)
	}
	return c.JSON(http.StatusOK, headlinesResponse{
		Message:   fmt.Sprintf("Found %d trending stories!", len(res.Headlines)),
		Headlines: res.Headlines,
		Dropped:   res.Dropped,
	})
}

func (h *StudioHandler) listHeadlines(c echo.Context) error {
	hs := currentSession(c).Headlines()
	return c.JSON(http.StatusOK, headlinesResponse{Message: fmt.Sprintf("Found %d trending stories!", len(hs)), Headlines: hs})
}

func (h *StudioHandler) selectHeadline(c echo.Context) error {
	var req selectionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sess := currentSession(c)
	var (
		headline models.Headline
		err      error
	)
	switch {
	case req.Index != nil:
		headline, err = sess.SelectIndex(*req.Index)
	case strings.TrimSpace(req.Title) != "":
		headline, err = sess.Select(req.Title)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "title or index required")
	}
	switch {
	case errors.Is(err, models.ErrNoHeadlines):
		return echo.NewHTTPError(http.StatusConflict, "fetch headlines first")
	case errors.Is(err, models.ErrHeadlineNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case err != nil:
		return err
	}
	return c.JSON(http.StatusOK, headline)
}

func (h *StudioHandler) produce(c echo.Context) error {
	sess := currentSession(c)
	log := h.Log.WithField("session", sess.ID())
	prod, err := sess.Produce(c.Request().Context(), render.ObserverFunc(func(p render.Progress) {
		log.WithField("percent", p.Percent).Debug(p.Label)
	}))
	if err != nil {
		var stageErr *render.StageError
		switch {
		case errors.Is(err, models.ErrNoSelection):
			return echo.NewHTTPError(http.StatusBadRequest, "select a headline first")
		case errors.Is(err, models.ErrMissingLLMKey):
			return echo.NewHTTPError(http.StatusBadRequest, models.MissingLLMKeyMessage)
		case errors.Is(err, models.ErrRenderInProgress):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.As(err, &stageErr):
			return echo.NewHTTPError(http.StatusBadGateway, stageErr.Error()).SetInternal(err)
		}
		return err
	}
	return c.JSON(http.StatusCreated, newProductionView(prod))
}

func (h *StudioHandler) latest(c echo.Context) error {
	prod, ok := currentSession(c).Latest()
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "nothing produced yet")
	}
	return c.JSON(http.StatusOK, newProductionView(prod))
}

// video serves the session's last render, inline or as a download.
func (h *StudioHandler) video(c echo.Context) error {
	prod, ok := currentSession(c).Latest()
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "nothing produced yet")
	}
	if c.QueryParam("download") != "" {
		return c.Attachment(prod.VideoPath, h.DownloadName)
	}
	return c.File(prod.VideoPath)
}
