package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rentledger/rentledger-api/internal/models"
)

// InvitationRepository persists invitation records. Every accessor is
// tenant-scoped except GetByTokenHash, which is the single unscoped lookup
// used by anonymous redemption — the redeeming caller has no tenant context
// yet. Do not add further unscoped accessors.
type InvitationRepository interface {
	Create(inv models.Invitation) (models.Invitation, error)
	HasPending(tenantID, email string, now time.Time) (bool, error)
	GetByTokenHash(tokenHash string) (models.Invitation, error)
	MarkAccepted(invitationID string) (models.Invitation, error)
	ListByTenant(tenantID string) ([]models.Invitation, error)
}

type invitationRepository struct {
	db *sql.DB
}

func NewInvitationRepository(db *sql.DB) InvitationRepository {
	return &invitationRepository{db: db}
}

const invitationColumns = "id, tenant_id, email, token_hash, invited_by_user_id, expires_at, accepted_at, created_at, updated_at"

func (r *invitationRepository) Create(inv models.Invitation) (models.Invitation, error) {
	const query = `
		INSERT INTO invitations (id, tenant_id, email, token_hash, invited_by_user_id, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + invitationColumns + `;
	`

	row := r.db.QueryRow(query,
		uuid.NewString(),
		inv.TenantID,
		inv.Email,
		inv.TokenHash,
		inv.InvitedByUserID,
		inv.ExpiresAt,
	)
	created, err := scanInvitation(row)
	if err != nil {
		return models.Invitation{}, errors.Wrap(err, "insert invitation")
	}
	return created, nil
}

// HasPending reports whether a valid (unaccepted, unexpired) invitation
// already exists for the tenant/email pair. Expired or accepted rows do not
// count.
func (r *invitationRepository) HasPending(tenantID, email string, now time.Time) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM invitations
			WHERE tenant_id = $1 AND email = $2 AND accepted_at IS NULL AND expires_at > $3
		);
	`

	var pending bool
	if err := r.db.QueryRow(query, tenantID, email, now).Scan(&pending); err != nil {
		return false, errors.Wrap(err, "check pending invitation")
	}
	return pending, nil
}

// GetByTokenHash is the unscoped redemption lookup. Returns sql.ErrNoRows
// when no invitation matches the digest.
func (r *invitationRepository) GetByTokenHash(tokenHash string) (models.Invitation, error) {
	const query = `
		SELECT ` + invitationColumns + `
		FROM invitations
		WHERE token_hash = $1;
	`

	return scanInvitation(r.db.QueryRow(query, tokenHash))
}

// MarkAccepted stamps accepted_at exactly once. The accepted_at IS NULL
// guard makes the claim atomic: the loser of a concurrent redemption race
// gets sql.ErrNoRows instead of a second acceptance.
func (r *invitationRepository) MarkAccepted(invitationID string) (models.Invitation, error) {
	const query = `
		UPDATE invitations
		SET accepted_at = now(), updated_at = now()
		WHERE id = $1 AND accepted_at IS NULL
		RETURNING ` + invitationColumns + `;
	`

	return scanInvitation(r.db.QueryRow(query, invitationID))
}

func (r *invitationRepository) ListByTenant(tenantID string) ([]models.Invitation, error) {
	const query = `
		SELECT ` + invitationColumns + `
		FROM invitations
		WHERE tenant_id = $1
		ORDER BY created_at DESC;
	`

	rows, err := r.db.Query(query, tenantID)
	if err != nil {
		return nil, errors.Wrap(err, "list invitations")
	}
	defer rows.Close()

	var invitations []models.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invitations = append(invitations, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate invitations")
	}

	return invitations, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInvitation(row rowScanner) (models.Invitation, error) {
	var inv models.Invitation
	err := row.Scan(
		&inv.ID,
		&inv.TenantID,
		&inv.Email,
		&inv.TokenHash,
		&inv.InvitedByUserID,
		&inv.ExpiresAt,
		&inv.AcceptedAt,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	if err != nil {
		return models.Invitation{}, err
	}
	return inv, nil
}
