// Package handler contains the HTTP handlers. Handlers parse the request,
// call a service and write the response; business rules live in service.
package handler

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/sakif/flexfolio/internal/apperror"
	"github.com/sakif/flexfolio/internal/demo"
	"github.com/sakif/flexfolio/internal/model"
	"github.com/sakif/flexfolio/internal/service"
)

//go:embed templates/*.html
var templateFiles embed.FS

// gradientPresets are the CSS backgrounds behind heroGradientPreset 1-4.
var gradientPresets = map[int]string{
	1: "linear-gradient(135deg, #667eea 0%, #764ba2 100%)",
	2: "linear-gradient(135deg, #0f2027 0%, #203a43 50%, #2c5364 100%)",
	3: "linear-gradient(135deg, #f093fb 0%, #f5576c 100%)",
	4: "linear-gradient(135deg, #43e97b 0%, #38f9d7 100%)",
}

// PortfolioHandler renders public portfolios, as JSON for the SPA and as a
// server-rendered page for visitors and crawlers.
type PortfolioHandler struct {
	portfolios *service.PortfolioService
	pages      map[string]*template.Template
	logger     *slog.Logger
}

// NewPortfolioHandler parses the page templates once. Each page is parsed
// together with base.html, which pulls in the page's "content" block.
func NewPortfolioHandler(portfolios *service.PortfolioService, logger *slog.Logger) (*PortfolioHandler, error) {
	funcs := template.FuncMap{
		"heroBackground": heroBackground,
	}

	pages := make(map[string]*template.Template)
	for _, name := range []string{"portfolio", "offline", "notfound"} {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFiles,
			"templates/base.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &PortfolioHandler{portfolios: portfolios, pages: pages, logger: logger}, nil
}

// HandleJSON returns the public portfolio envelope.
//
// HTTP: GET /portfolio/{username}
func (h *PortfolioHandler) HandleJSON(w http.ResponseWriter, r *http.Request) {
	p, err := h.portfolios.Get(r.Context(), r.PathValue("username"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandlePage renders the portfolio page, or the offline page (410) or the
// not-found page (404).
//
// HTTP: GET /u/{username}
func (h *PortfolioHandler) HandlePage(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	p, err := h.portfolios.Get(r.Context(), username)
	switch {
	case err == nil:
		h.render(w, http.StatusOK, "portfolio", p)
	case errors.Is(err, apperror.ErrOffline):
		h.render(w, http.StatusGone, "offline", map[string]string{"Username": username})
	case errors.Is(err, apperror.ErrNotFound):
		h.render(w, http.StatusNotFound, "notfound", map[string]string{"Username": username})
	default:
		h.logger.Error("failed to load portfolio",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// HTTP: GET /demo/portfolio
func (h *PortfolioHandler) HandleDemoJSON(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, demo.Portfolio())
}

// HTTP: GET /demo
func (h *PortfolioHandler) HandleDemoPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "portfolio", demo.Portfolio())
}

func (h *PortfolioHandler) render(w http.ResponseWriter, status int, page string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.pages[page].ExecuteTemplate(w, "base", data); err != nil {
		// The status line is already sent; all we can do is log.
		h.logger.Error("failed to render template",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
	}
}

// blurStep is the blur radius per heroBackgroundBlurLevel step (0-4).
const blurStep = 4

// heroBackground returns the inline CSS for the hero's background layer.
// The layer sits behind the hero text, so a blurred image leaves the text sharp.
func heroBackground(hero model.Hero) template.CSS {
	switch hero.HeroBackgroundMode {
	case model.BackgroundImage:
		if isPlainHTTPURL(hero.HeroBackgroundImageURL) {
			css := fmt.Sprintf("background: center / cover no-repeat url(%q);", hero.HeroBackgroundImageURL)
			if level := min(max(hero.HeroBackgroundBlurLevel, 0), 4); level > 0 {
				css += fmt.Sprintf(" filter: blur(%dpx);", level*blurStep)
			}
			return template.CSS(css)
		}
	case model.BackgroundPattern:
		return template.CSS("background-color: #111827;")
	}
	g, ok := gradientPresets[hero.HeroGradientPreset]
	if !ok {
		g = gradientPresets[1]
	}
	return template.CSS("background: " + g + ";")
}

// isPlainHTTPURL reports whether s is an http(s) URL with no characters that
// could end a CSS url() token.
func isPlainHTTPURL(s string) bool {
	if strings.ContainsAny(s, "\"'()\\ \n\r\t") {
		return false
	}
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
