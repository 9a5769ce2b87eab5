package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rentledger/rentledger-api/internal/authz"
	"github.com/rentledger/rentledger-api/internal/models"
	"github.com/rentledger/rentledger-api/internal/token"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func inviteRequestFor(t *testing.T, body string, withIdentity bool) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/invite", bytes.NewBufferString(body))
	if withIdentity {
		ctx := authz.WithIdentity(req.Context(), "tenant-1", "user-1", models.RoleOwner)
		req = req.WithContext(ctx)
	}
	return req
}

func TestInviteHandler_SendInvite(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		invitationRepo := newFakeInvitationRepo()
		mailer := &captureMailer{}
		h := NewInviteHandler(invitationRepo, mailer, "https://app.example.com/register?token=%s", testLogger())

		rec := httptest.NewRecorder()
		h.SendInvite(rec, inviteRequestFor(t, `{"email":" New@Example.COM "}`, true))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp map[string]bool
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.True(t, resp["success"])

		require.Len(t, invitationRepo.byID, 1)
		var stored models.Invitation
		for _, inv := range invitationRepo.byID {
			stored = *inv
		}
		assert.Equal(t, "new@example.com", stored.Email, "email is normalized before storage")
		assert.Equal(t, "tenant-1", stored.TenantID)
		assert.Equal(t, "user-1", stored.InvitedByUserID)
		assert.Nil(t, stored.AcceptedAt)
		assert.WithinDuration(t, time.Now().Add(models.InvitationTTL), stored.ExpiresAt, time.Minute)

		require.Len(t, mailer.urls, 1)
		assert.Equal(t, []string{"new@example.com"}, mailer.recipients)

		// The email link carries the raw token; the store carries only
		// its digest.
		parsed, err := url.Parse(mailer.urls[0])
		require.NoError(t, err)
		raw := parsed.Query().Get("token")
		require.NotEmpty(t, raw)
		assert.NotEqual(t, raw, stored.TokenHash)
		assert.Equal(t, token.Hash(raw), stored.TokenHash)
		assert.Len(t, stored.TokenHash, 64)
	})

	t.Run("raw token never appears in the response", func(t *testing.T) {
		invitationRepo := newFakeInvitationRepo()
		mailer := &captureMailer{}
		h := NewInviteHandler(invitationRepo, mailer, "", testLogger())

		rec := httptest.NewRecorder()
		h.SendInvite(rec, inviteRequestFor(t, `{"email":"new@example.com"}`, true))

		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, mailer.urls, 1)
		parsed, err := url.Parse(mailer.urls[0])
		require.NoError(t, err)
		raw := parsed.Query().Get("token")
		assert.NotContains(t, rec.Body.String(), raw)
	})

	t.Run("missing identity", func(t *testing.T) {
		h := NewInviteHandler(newFakeInvitationRepo(), &captureMailer{}, "", testLogger())

		rec := httptest.NewRecorder()
		h.SendInvite(rec, inviteRequestFor(t, `{"email":"new@example.com"}`, false))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("validation failures", func(t *testing.T) {
		tests := []struct {
			name string
			body string
		}{
			{"empty email", `{"email":""}`},
			{"whitespace email", `{"email":"   "}`},
			{"malformed email", `{"email":"not-an-address"}`},
			{"bad payload", `{`},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				invitationRepo := newFakeInvitationRepo()
				mailer := &captureMailer{}
				h := NewInviteHandler(invitationRepo, mailer, "", testLogger())

				rec := httptest.NewRecorder()
				h.SendInvite(rec, inviteRequestFor(t, tt.body, true))

				assert.Equal(t, http.StatusBadRequest, rec.Code)
				assert.Empty(t, invitationRepo.byID, "no invitation persisted")
				assert.Empty(t, mailer.urls, "no email sent")
			})
		}
	})

	t.Run("pending invitation conflict", func(t *testing.T) {
		invitationRepo := newFakeInvitationRepo()
		invitationRepo.pending = true
		mailer := &captureMailer{}
		h := NewInviteHandler(invitationRepo, mailer, "", testLogger())

		rec := httptest.NewRecorder()
		h.SendInvite(rec, inviteRequestFor(t, `{"email":"new@example.com"}`, true))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		var resp errorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, codeInvitationPending, resp.Code, "conflict is distinguishable from hard failures")
		assert.Empty(t, invitationRepo.byID)
		assert.Empty(t, mailer.urls)
	})

	t.Run("mailer failure fails the operation", func(t *testing.T) {
		invitationRepo := newFakeInvitationRepo()
		mailer := &captureMailer{err: assert.AnError}
		h := NewInviteHandler(invitationRepo, mailer, "", testLogger())

		rec := httptest.NewRecorder()
		h.SendInvite(rec, inviteRequestFor(t, `{"email":"new@example.com"}`, true))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, strings.ToLower(rec.Body.String()), "email")
	})
}

func TestInviteHandler_ListInvites(t *testing.T) {
	invitationRepo := newFakeInvitationRepo()
	invitationRepo.add(models.Invitation{TenantID: "tenant-1", Email: "a@example.com", TokenHash: "hash-a", ExpiresAt: time.Now().Add(time.Hour)})
	invitationRepo.add(models.Invitation{TenantID: "tenant-2", Email: "b@example.com", TokenHash: "hash-b", ExpiresAt: time.Now().Add(time.Hour)})

	h := NewInviteHandler(invitationRepo, &captureMailer{}, "", testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/invites", nil)
	req = req.WithContext(authz.WithIdentity(req.Context(), "tenant-1", "user-1", models.RoleOwner))
	rec := httptest.NewRecorder()
	h.ListInvites(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	var resp struct {
		Invitations []models.Invitation `json:"invitations"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	require.Len(t, resp.Invitations, 1, "listing is tenant-scoped")
	assert.Equal(t, "a@example.com", resp.Invitations[0].Email)
	assert.NotContains(t, body, "hash-a", "token hashes are not serialized")
}
