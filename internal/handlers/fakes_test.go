package handlers

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rentledger/rentledger-api/internal/models"
)

// fakeInvitationRepo is an in-memory repository.InvitationRepository.
type fakeInvitationRepo struct {
	byID       map[string]*models.Invitation
	pending    bool
	pendingErr error
	createErr  error
	markNoRows bool
	nextID     int
}

func newFakeInvitationRepo() *fakeInvitationRepo {
	return &fakeInvitationRepo{byID: make(map[string]*models.Invitation)}
}

func (f *fakeInvitationRepo) add(inv models.Invitation) models.Invitation {
	f.nextID++
	if inv.ID == "" {
		inv.ID = fmt.Sprintf("inv-%d", f.nextID)
	}
	now := time.Now()
	inv.CreatedAt = now
	inv.UpdatedAt = now
	stored := inv
	f.byID[inv.ID] = &stored
	return stored
}

func (f *fakeInvitationRepo) Create(inv models.Invitation) (models.Invitation, error) {
	if f.createErr != nil {
		return models.Invitation{}, f.createErr
	}
	return f.add(inv), nil
}

func (f *fakeInvitationRepo) HasPending(tenantID, email string, now time.Time) (bool, error) {
	if f.pendingErr != nil {
		return false, f.pendingErr
	}
	return f.pending, nil
}

func (f *fakeInvitationRepo) GetByTokenHash(tokenHash string) (models.Invitation, error) {
	for _, inv := range f.byID {
		if inv.TokenHash == tokenHash {
			return *inv, nil
		}
	}
	return models.Invitation{}, sql.ErrNoRows
}

func (f *fakeInvitationRepo) MarkAccepted(invitationID string) (models.Invitation, error) {
	inv, ok := f.byID[invitationID]
	if !ok || inv.AcceptedAt != nil || f.markNoRows {
		return models.Invitation{}, sql.ErrNoRows
	}
	now := time.Now()
	inv.AcceptedAt = &now
	inv.UpdatedAt = now
	return *inv, nil
}

func (f *fakeInvitationRepo) ListByTenant(tenantID string) ([]models.Invitation, error) {
	var out []models.Invitation
	for _, inv := range f.byID {
		if inv.TenantID == tenantID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

// fakeTenantRepo is an in-memory repository.TenantRepository recording the
// compensation path.
type fakeTenantRepo struct {
	createErr error
	created   []models.Tenant
	deleted   []string
	deleteErr error
	nextID    int
}

func (f *fakeTenantRepo) Create(name string) (models.Tenant, error) {
	if f.createErr != nil {
		return models.Tenant{}, f.createErr
	}
	f.nextID++
	tenant := models.Tenant{
		ID:        fmt.Sprintf("tenant-%d", f.nextID),
		Name:      name,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.created = append(f.created, tenant)
	return tenant, nil
}

func (f *fakeTenantRepo) GetByID(id string) (models.Tenant, error) {
	for _, tenant := range f.created {
		if tenant.ID == id {
			return tenant, nil
		}
	}
	return models.Tenant{}, sql.ErrNoRows
}

func (f *fakeTenantRepo) Delete(id string) error {
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

// fakeUserRepo is an in-memory repository.UserRepository.
type fakeUserRepo struct {
	byEmail map[string]models.User
	// createHook runs at the start of Create; tests use it to interleave a
	// concurrent writer between the handler's precheck and its insert.
	createHook func() error
	createErr  error
	created    []models.User
	authUser   *models.User
	authErr    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: make(map[string]models.User)}
}

func (f *fakeUserRepo) Create(tenantID, email, password string, role models.UserRole, emailVerified bool) (models.User, error) {
	if f.createHook != nil {
		if err := f.createHook(); err != nil {
			return models.User{}, err
		}
	}
	if f.createErr != nil {
		return models.User{}, f.createErr
	}
	user := models.User{
		ID:            fmt.Sprintf("user-%d", len(f.created)+1),
		TenantID:      tenantID,
		Email:         email,
		PasswordHash:  "hash-" + password,
		Role:          role,
		EmailVerified: emailVerified,
		IsActive:      true,
	}
	f.created = append(f.created, user)
	f.byEmail[email] = user
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(email string) (models.User, error) {
	if user, ok := f.byEmail[email]; ok {
		return user, nil
	}
	return models.User{}, sql.ErrNoRows
}

func (f *fakeUserRepo) Authenticate(email, password string) (models.User, error) {
	if f.authErr != nil {
		return models.User{}, f.authErr
	}
	if f.authUser != nil {
		return *f.authUser, nil
	}
	return models.User{}, models.ErrInvalidCredentials
}

// captureMailer records outbound invitations instead of sending them.
type captureMailer struct {
	recipients []string
	urls       []string
	err        error
}

func (m *captureMailer) SendInvite(recipientEmail, inviteURL string) error {
	if m.err != nil {
		return m.err
	}
	m.recipients = append(m.recipients, recipientEmail)
	m.urls = append(m.urls, inviteURL)
	return nil
}
