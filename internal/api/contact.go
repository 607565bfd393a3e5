package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/wxsfy/krowz/internal/email"
)

// ─── POST /api/contact ────────────────────────────────────────────────────────
//
// Relays a contact form submission to the site inbox via Resend. There is no
// submission identifier and no dedup: resubmitting sends a second email.

type contactRequest struct {
	Type    string `json:"type"` // "business" | "user"
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type contactResponse struct {
	OK bool   `json:"ok"`
	ID string `json:"id,omitempty"` // provider message id, when reported
}

// handleContact validates presence of all four fields (nothing more — format
// checking stays browser-side) and forwards the submission. Failures after
// validation are server-side: a missing API key or a provider error both
// surface as 500 with the detail kept in the logs.
func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if !decode(w, r, &req) {
		return
	}

	if req.Type == "" || req.Name == "" || req.Email == "" || req.Message == "" {
		respondErr(w, http.StatusBadRequest, "Missing fields")
		return
	}

	id, err := s.mailer.SendContactMessage(r.Context(), email.ContactMessageParams{
		Type:    req.Type,
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	})
	if errors.Is(err, email.ErrNotConfigured) {
		s.logger.Error("contact: RESEND_API_KEY is not set")
		respondErr(w, http.StatusInternalServerError, "Missing RESEND_API_KEY")
		return
	}
	if err != nil {
		s.respondInternalErr(w, r, fmt.Errorf("relay contact message: %w", err))
		return
	}

	s.logger.Info("contact: relayed",
		"type", req.Type,
		"name", req.Name,
		"provider_id", id,
	)

	respond(w, http.StatusOK, contactResponse{OK: true, ID: id})
}
