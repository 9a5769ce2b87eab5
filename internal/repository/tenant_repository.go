package repository

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rentledger/rentledger-api/internal/models"
)

type TenantRepository interface {
	Create(name string) (models.Tenant, error)
	GetByID(id string) (models.Tenant, error)
	// Delete removes a tenant and, via cascade, its users. It exists for
	// the redemption handler's compensation path; tenants are not
	// otherwise deletable through this API.
	Delete(id string) error
}

type tenantRepository struct {
	db *sql.DB
}

func NewTenantRepository(db *sql.DB) TenantRepository {
	return &tenantRepository{db: db}
}

func (r *tenantRepository) Create(name string) (models.Tenant, error) {
	const query = `
		INSERT INTO tenants (id, name)
		VALUES ($1, $2)
		RETURNING id, name, created_at, updated_at;
	`

	var tenant models.Tenant
	err := r.db.QueryRow(query, uuid.NewString(), name).Scan(&tenant.ID, &tenant.Name, &tenant.CreatedAt, &tenant.UpdatedAt)
	if err != nil {
		return models.Tenant{}, errors.Wrap(err, "insert tenant")
	}
	return tenant, nil
}

func (r *tenantRepository) GetByID(id string) (models.Tenant, error) {
	const query = `
		SELECT id, name, created_at, updated_at
		FROM tenants
		WHERE id = $1;
	`

	var tenant models.Tenant
	err := r.db.QueryRow(query, id).Scan(&tenant.ID, &tenant.Name, &tenant.CreatedAt, &tenant.UpdatedAt)
	return tenant, err
}

func (r *tenantRepository) Delete(id string) error {
	const query = `DELETE FROM tenants WHERE id = $1;`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return errors.Wrap(err, "delete tenant")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
