package api

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wxsfy/krowz/internal/redemption"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// ─── GET / ────────────────────────────────────────────────────────────────────

// handleLanding serves the marketing page. The contact form posts to
// /api/contact from inline script; #contact is the in-page anchor the nav
// links to.
func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplates.ExecuteTemplate(w, "landing.html", nil); err != nil {
		s.logger.Error("landing: render failed", "error", err)
	}
}

// ─── GET /r and /r/{token} ───────────────────────────────────────────────────

type verifyPageData struct {
	Token string
	// Reasons is the denial-code→message table, serialised once server-side
	// so the page script and the Go enum can never drift apart.
	Reasons template.JS
}

// handleVerifyPage serves the staff verify page. With no token in the URL the
// redeem control renders permanently disabled.
func (s *Server) handleVerifyPage(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	reasons, err := json.Marshal(redemption.Messages())
	if err != nil {
		s.respondInternalErr(w, r, fmt.Errorf("marshal reason table: %w", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = pageTemplates.ExecuteTemplate(w, "verify.html", verifyPageData{
		Token:   token,
		Reasons: template.JS(reasons),
	})
	if err != nil {
		s.logger.Error("verify: render failed", "error", err)
	}
}
