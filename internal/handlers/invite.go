package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rentledger/rentledger-api/internal/authz"
	"github.com/rentledger/rentledger-api/internal/models"
	"github.com/rentledger/rentledger-api/internal/notification"
	"github.com/rentledger/rentledger-api/internal/repository"
	"github.com/rentledger/rentledger-api/internal/token"
	"github.com/rs/zerolog"
)

// InviteHandler issues invitations: it gates creation behind the owner
// role, deduplicates against pending invitations, persists the record, and
// dispatches the email carrying the raw token.
type InviteHandler struct {
	invitationRepo repository.InvitationRepository
	mailer         notification.InviteMailer
	urlTpl         string
	logger         zerolog.Logger
}

type inviteRequest struct {
	Email string `json:"email"`
}

func NewInviteHandler(
	invitationRepo repository.InvitationRepository,
	mailer notification.InviteMailer,
	inviteURLTemplate string,
	logger zerolog.Logger,
) *InviteHandler {
	if inviteURLTemplate == "" {
		inviteURLTemplate = "https://app.rentledger.io/register?token=%s"
	}
	return &InviteHandler{
		invitationRepo: invitationRepo,
		mailer:         mailer,
		urlTpl:         inviteURLTemplate,
		logger:         logger,
	}
}

func (h *InviteHandler) SendInvite(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := authz.TenantIDFromRequest(r)
	if !ok {
		http.Error(w, "tenant context missing", http.StatusUnauthorized)
		return
	}
	userID, ok := authz.UserIDFromRequest(r)
	if !ok {
		http.Error(w, "user context missing", http.StatusUnauthorized)
		return
	}

	var payload inviteRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, codeValidationError, "", "invalid request payload")
		return
	}

	email := normalizeEmail(payload.Email)
	if email == "" {
		writeError(w, http.StatusBadRequest, codeValidationError, "email", "email is required")
		return
	}
	if !validEmail(email) {
		writeError(w, http.StatusBadRequest, codeValidationError, "email", "email is not a valid address")
		return
	}

	pending, err := h.invitationRepo.HasPending(tenantID, email, time.Now())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to check pending invitations")
		writeError(w, http.StatusInternalServerError, codeInternalError, "", "failed to create invitation")
		return
	}
	if pending {
		writeError(w, http.StatusBadRequest, codeInvitationPending, "email", models.ErrInvitationPending.Error())
		return
	}

	raw, err := token.Generate()
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to generate invitation token")
		writeError(w, http.StatusInternalServerError, codeInternalError, "", "failed to create invitation")
		return
	}

	invitation, err := h.invitationRepo.Create(models.Invitation{
		TenantID:        tenantID,
		Email:           email,
		TokenHash:       token.Hash(raw),
		InvitedByUserID: userID,
		ExpiresAt:       time.Now().Add(models.InvitationTTL),
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to persist invitation")
		writeError(w, http.StatusInternalServerError, codeInternalError, "", "failed to create invitation")
		return
	}

	// The invite URL is the only place the raw token leaves the process.
	inviteURL := fmt.Sprintf(h.urlTpl, raw)
	if err := h.mailer.SendInvite(invitation.Email, inviteURL); err != nil {
		h.logger.Error().Err(err).Str("invitation_id", invitation.ID).Msg("failed to send invitation email")
		writeError(w, http.StatusInternalServerError, codeInternalError, "", "failed to send invitation email")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ListInvites returns the authenticated owner's tenant-scoped invitations.
// Token hashes are not serialized.
func (h *InviteHandler) ListInvites(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := authz.TenantIDFromRequest(r)
	if !ok {
		http.Error(w, "tenant context missing", http.StatusUnauthorized)
		return
	}

	invitations, err := h.invitationRepo.ListByTenant(tenantID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list invitations")
		writeError(w, http.StatusInternalServerError, codeInternalError, "", "failed to list invitations")
		return
	}
	if invitations == nil {
		invitations = []models.Invitation{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"invitations": invitations})
}
