package repository

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/rentledger/rentledger-api/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// uniqueViolation is the Postgres error code for unique constraint breaches.
const uniqueViolation = "23505"

type UserRepository interface {
	Create(tenantID, email, password string, role models.UserRole, emailVerified bool) (models.User, error)
	GetByEmail(email string) (models.User, error)
	Authenticate(email, password string) (models.User, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(tenantID, email, password string, role models.UserRole, emailVerified bool) (models.User, error) {
	if !models.IsValidRole(role) {
		return models.User{}, errors.Errorf("invalid role %q", role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, errors.Wrap(err, "hash password")
	}

	user := models.User{
		TenantID:      tenantID,
		Email:         email,
		PasswordHash:  string(hash),
		Role:          role,
		EmailVerified: emailVerified,
		IsActive:      true,
	}

	const query = `
		INSERT INTO users (id, tenant_id, email, password_hash, role, email_verified, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at;
	`
	err = r.db.QueryRow(query,
		uuid.NewString(),
		user.TenantID,
		user.Email,
		user.PasswordHash,
		string(user.Role),
		user.EmailVerified,
		user.IsActive,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return models.User{}, models.ErrDuplicateEmail
		}
		return models.User{}, errors.Wrap(err, "insert user")
	}

	return user, nil
}

func (r *userRepository) GetByEmail(email string) (models.User, error) {
	const query = `
		SELECT id, tenant_id, email, password_hash, role, email_verified, is_active, created_at, updated_at
		FROM users
		WHERE email = $1;
	`

	var user models.User
	err := r.db.QueryRow(query, email).Scan(
		&user.ID,
		&user.TenantID,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.EmailVerified,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) Authenticate(email, password string) (models.User, error) {
	user, err := r.GetByEmail(email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, models.ErrInvalidCredentials
		}
		return models.User{}, err
	}

	if !user.IsActive {
		return models.User{}, models.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, models.ErrInvalidCredentials
	}

	return user, nil
}
