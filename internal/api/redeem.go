package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wxsfy/krowz/internal/redemption"
)

// ─── POST /api/redeem/{token} ────────────────────────────────────────────────
//
// Invokes consume_redemption with the verbatim token. The procedure is the
// single authority on whether a redemption goes through — expiry, monthly
// caps, and once-only consumption are all decided (and recorded) there.

// handleRedeem always answers with a terminal outcome once invoked. A failure
// reaching the procedure — connection refused, timeout, malformed result — is
// indistinguishable from the procedure's own server_error to the staff member
// holding the phone, so it is reported as exactly that.
func (s *Server) handleRedeem(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		respondErr(w, http.StatusBadRequest, "missing token")
		return
	}

	outcome, err := s.verifier.Consume(r.Context(), token)
	if err != nil {
		s.logger.Error("redeem: consume_redemption failed",
			"error", err,
		)
		respond(w, http.StatusOK, redemption.Denied(redemption.ReasonServerError))
		return
	}

	respond(w, http.StatusOK, outcome)
}
