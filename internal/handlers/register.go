package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rentledger/rentledger-api/internal/models"
	"github.com/rentledger/rentledger-api/internal/repository"
	"github.com/rentledger/rentledger-api/internal/token"
	"github.com/rs/zerolog"
)

// invalidOrExpiredMessage is returned verbatim for an unknown, expired, or
// already-used token. Collapsing the three causes into one message keeps
// anonymous callers from probing which invitations exist.
const invalidOrExpiredMessage = "invitation link is invalid or expired"

// RegisterHandler redeems invitations: it validates the presented token and
// password, then provisions a brand-new tenant with an owner credential for
// the invitee. The order is tenant, then credential, then the accepted_at
// claim; any later-step failure deletes the tenant again so no
// half-provisioned account survives.
type RegisterHandler struct {
	invitationRepo repository.InvitationRepository
	tenantRepo     repository.TenantRepository
	userRepo       repository.UserRepository
	logger         zerolog.Logger
}

type registerRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type registerResponse struct {
	UserID                    string `json:"user_id"`
	RequiresEmailVerification bool   `json:"requires_email_verification"`
}

func NewRegisterHandler(
	invitationRepo repository.InvitationRepository,
	tenantRepo repository.TenantRepository,
	userRepo repository.UserRepository,
	logger zerolog.Logger,
) *RegisterHandler {
	return &RegisterHandler{
		invitationRepo: invitationRepo,
		tenantRepo:     tenantRepo,
		userRepo:       userRepo,
		logger:         logger,
	}
}

func (h *RegisterHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidationError, "", "invalid request payload")
		return
	}

	rawToken := strings.TrimSpace(req.Token)
	if rawToken == "" {
		writeError(w, http.StatusBadRequest, codeValidationError, "token", "token is required")
		return
	}
	if msg := validatePassword(req.Password); msg != "" {
		writeError(w, http.StatusBadRequest, codeValidationError, "password", msg)
		return
	}

	invitation, err := h.invitationRepo.GetByTokenHash(token.Hash(rawToken))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusBadRequest, codeInvalidOrExpired, "", invalidOrExpiredMessage)
			return
		}
		h.logger.Error().Err(err).Msg("failed to look up invitation")
		writeError(w, http.StatusInternalServerError, codeInternalError, "", "failed to register")
		return
	}
	if !invitation.IsValid(time.Now()) {
		writeError(w, http.StatusBadRequest, codeInvalidOrExpired, "", invalidOrExpiredMessage)
		return
	}

	// A credential for the invitee should never exist at this point; its
	// presence means an earlier invariant was breached.
	if _, err := h.userRepo.GetByEmail(invitation.Email); err == nil {
		writeError(w, http.StatusBadRequest, codeEmailExists, "", fmt.Sprintf("a user with email %s already exists", invitation.Email))
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		h.logger.Error().Err(err).Msg("failed to look up existing user")
		writeError(w, http.StatusInternalServerError, codeInternalError, "", "failed to register")
		return
	}

	tenant, err := h.tenantRepo.Create(models.TenantNameForEmail(invitation.Email))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to create tenant")
		writeError(w, http.StatusInternalServerError, codeInternalError, "", "failed to register")
		return
	}

	// The invitation itself is the trust signal for the address, so the
	// credential starts out verified and no verification email is sent.
	user, err := h.userRepo.Create(tenant.ID, invitation.Email, req.Password, models.RoleOwner, true)
	if err != nil {
		h.rollbackTenant(tenant.ID)
		if errors.Is(err, models.ErrDuplicateEmail) {
			// A concurrent redemption of the same token can insert the
			// credential between the precheck and here. When the
			// invitation turns out to be consumed, this caller lost
			// that race and must see the standard generic outcome, not
			// a conflict revealing that the token was just redeemed.
			if current, lookupErr := h.invitationRepo.GetByTokenHash(invitation.TokenHash); lookupErr == nil && current.IsAccepted() {
				writeError(w, http.StatusBadRequest, codeInvalidOrExpired, "", invalidOrExpiredMessage)
				return
			}
			writeError(w, http.StatusBadRequest, codeEmailExists, "", fmt.Sprintf("a user with email %s already exists", invitation.Email))
			return
		}
		h.logger.Error().Err(err).Msg("failed to create user")
		writeError(w, http.StatusInternalServerError, codeInternalError, "", "failed to register")
		return
	}

	if _, err := h.invitationRepo.MarkAccepted(invitation.ID); err != nil {
		h.rollbackTenant(tenant.ID)
		if errors.Is(err, sql.ErrNoRows) {
			// Lost a concurrent redemption race; the winner keeps its
			// tenant and the caller sees the standard generic outcome.
			writeError(w, http.StatusBadRequest, codeInvalidOrExpired, "", invalidOrExpiredMessage)
			return
		}
		h.logger.Error().Err(err).Msg("failed to mark invitation accepted")
		writeError(w, http.StatusInternalServerError, codeInternalError, "", "failed to register")
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{
		UserID:                    user.ID,
		RequiresEmailVerification: false,
	})
}

// rollbackTenant removes a tenant created earlier in the redemption
// sequence; users cascade with it.
func (h *RegisterHandler) rollbackTenant(tenantID string) {
	if err := h.tenantRepo.Delete(tenantID); err != nil {
		h.logger.Error().Err(err).Str("tenant_id", tenantID).Msg("failed to roll back tenant")
	}
}
