package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/agent-portal/internal/domain"
)

// ListFilter narrows user listings by lifecycle state.
type ListFilter struct {
	Status  *domain.UserStatus
	Deleted *bool
}

// UserRepository defines persistence access for portal accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateStatus(ctx context.Context, id string, status domain.UserStatus, approvedBy, blockedBy *string) error
	SetDeleted(ctx context.Context, id string, deletedBy *string) error
	List(ctx context.Context, filter ListFilter) ([]domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `
        id, name, email, password_hash, role, status, is_deleted,
        approved_by, blocked_by, deleted_by,
        organization, phone, state, city, document_urls,
        created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (name, email, password_hash, role, status, is_deleted,
                           approved_by, organization, phone, state, city, document_urls)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, COALESCE($12, '{}'))
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Status,
		user.IsDeleted,
		user.ApprovedBy,
		user.Organization,
		user.Phone,
		user.State,
		user.City,
		user.DocumentURLs,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	return r.scanOne(r.pool.QueryRow(ctx, query, email))
}

// UpdateStatus overwrites the lifecycle status in a single document
// write. Audit references are only set when provided, never cleared.
func (r *userRepository) UpdateStatus(ctx context.Context, id string, status domain.UserStatus, approvedBy, blockedBy *string) error {
	const query = `
        UPDATE users SET status=$2,
               approved_by=COALESCE($3, approved_by),
               blocked_by=COALESCE($4, blocked_by),
               updated_at=NOW()
        WHERE id=$1`

	cmd, err := r.pool.Exec(ctx, query, id, status, approvedBy, blockedBy)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) SetDeleted(ctx context.Context, id string, deletedBy *string) error {
	const query = `
        UPDATE users SET is_deleted=TRUE,
               deleted_by=COALESCE($2, deleted_by),
               updated_at=NOW()
        WHERE id=$1`

	cmd, err := r.pool.Exec(ctx, query, id, deletedBy)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) List(ctx context.Context, filter ListFilter) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE 1=1`
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += ` AND status=$1`
	}
	if filter.Deleted != nil {
		if *filter.Deleted {
			query += ` AND is_deleted`
		} else {
			query += ` AND NOT is_deleted`
		}
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (r *userRepository) scanOne(row pgx.Row) (*domain.User, error) {
	return scanUser(row)
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Status,
		&user.IsDeleted,
		&user.ApprovedBy,
		&user.BlockedBy,
		&user.DeletedBy,
		&user.Organization,
		&user.Phone,
		&user.State,
		&user.City,
		&user.DocumentURLs,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
