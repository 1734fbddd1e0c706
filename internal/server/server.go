// Package server serves the dashboard page and its JSON, PNG and xlsx
// endpoints.
package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"diamond-dashboard/internal/config"
	"diamond-dashboard/internal/dashboard"
	"diamond-dashboard/internal/excel"
	"diamond-dashboard/internal/figure"
	"diamond-dashboard/internal/page"
)

const selectionKey = "countries"

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type handler struct {
	app   *dashboard.App
	title string
	log   *zap.Logger
}

// New builds the router. The App is shared read-only by every request.
func New(app *dashboard.App, cfg *config.Config, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(requestID(), accessLog(log), gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Server.SessionSecret))
	store.Options(sessions.Options{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions(cfg.Server.SessionName, store))

	r.SetHTMLTemplate(page.Template())

	h := &handler{app: app, title: cfg.Dashboard.Title, log: log}

	r.GET("/", h.index)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	api := r.Group("/api")
	{
		api.GET("/mines", h.mines)
		api.GET("/selection", h.selection)
		api.GET("/figures/:id", h.figure)
	}

	r.GET("/figures/:id/png", h.png)
	r.GET("/export/production.xlsx", h.export)

	return r
}

func (h *handler) index(c *gin.Context) {
	selected := loadSelection(sessions.Default(c))

	figures := h.app.Figures()
	for i, f := range figures {
		if f.ID == dashboard.MapID {
			figures[i] = h.app.FilterMines(selected)
		}
	}

	c.HTML(http.StatusOK, page.Name, page.NewData(h.title, h.app.Countries(), selected, figures))
}

func (h *handler) mines(c *gin.Context) {
	selected := dashboard.NormalizeSelection(c.QueryArray("country"))

	session := sessions.Default(c)
	session.Set(selectionKey, selected)
	if err := session.Save(); err != nil {
		h.log.Warn("Failed to save selection", zap.Error(err))
	}

	c.JSON(http.StatusOK, h.app.FilterMines(selected))
}

func (h *handler) selection(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"countries": loadSelection(sessions.Default(c)),
	})
}

func (h *handler) figure(c *gin.Context) {
	f, ok := h.app.Figure(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "figure not found"})
		return
	}
	c.JSON(http.StatusOK, f)
}

func (h *handler) png(c *gin.Context) {
	f, ok := h.app.Figure(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "figure not found"})
		return
	}

	var buf bytes.Buffer
	if err := figure.RenderPNG(f, &buf); err != nil {
		if errors.Is(err, figure.ErrUnsupportedKind) {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "render failed"})
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (h *handler) export(c *gin.Context) {
	ds := h.app.Dataset()

	var buf bytes.Buffer
	if err := excel.WriteProduction(&buf, ds.NaturalYearly, ds.LabYearly); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "export failed"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="production.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// loadSelection reads the selection saved by the mines endpoint. Anything
// unexpected in the session reads as no selection.
func loadSelection(s sessions.Session) []string {
	v, ok := s.Get(selectionKey).([]string)
	if !ok {
		return nil
	}
	return dashboard.NormalizeSelection(v)
}

// Run serves handler on addr until ctx is canceled, then shuts down,
// giving in-flight requests a few seconds to finish.
func Run(ctx context.Context, addr string, handler http.Handler, log *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Dashboard listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("Server stopped")
	return <-errChan
}
