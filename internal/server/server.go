package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mohammad-safakhou/newsreel/config"
	"github.com/mohammad-safakhou/newsreel/internal/logger"
	"github.com/mohammad-safakhou/newsreel/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Deps are the collaborators the HTTP surface is built from. Ledger and Gatherer are
// optional.
type Deps struct {
	Config   *config.Config
	Sessions session.Store
	Ledger   RenderLister
	Gatherer prometheus.Gatherer
	Log      *logrus.Logger
}

// New builds the echo instance with every route mounted.
func New(d Deps) *echo.Echo {
	if d.Log == nil {
		d.Log = logger.Discard()
	}
	log := logger.Component(d.Log, "http")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		entry := log.WithFields(logrus.Fields{"status": code, "method": req.Method, "path": req.URL.Path, "ip": c.RealIP()})
		if code >= http.StatusInternalServerError {
			entry.WithError(err).Error("request failed")
		} else {
			entry.Debug(msg)
		}
		if !c.Response().Committed {
			if req.Method == http.MethodHead {
				_ = c.NoContent(code)
				return
			}
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	if d.Config.Telemetry.Enabled && d.Gatherer != nil {
		e.GET(d.Config.Telemetry.MetricsPath, echo.WrapHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}
	registerPage(e)

	sess := withSession(d.Sessions, d.Config.Server.SessionTTL)

	sh := &StudioHandler{DownloadName: d.Config.Render.Normalize().DownloadName, Log: log}
	api := e.Group("/api", sess)
	sh.Register(api)
	e.GET("/media/video", sh.video, existingSession(d.Sessions))

	rh := &RendersHandler{Ledger: d.Ledger}
	rh.Register(api.Group("/renders"))

	return e
}

// Run serves e on addr until ctx is cancelled.
func Run(ctx context.Context, e *echo.Echo, addr string, log *logrus.Entry) error {
	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
