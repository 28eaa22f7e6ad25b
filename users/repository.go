package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/storefront-go/apperror"
)

const selectUserBase = `SELECT id, username, email, password, created_at, updated_at FROM users`

// pgUniqueViolation is the PostgreSQL error code for unique constraint violations.
const pgUniqueViolation = "23505"

// Repository is the persistence boundary for users.
type Repository interface {
	List(ctx context.Context, filter Filter) ([]User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, username, email, passwordHash string) (*User, error)
	Update(ctx context.Context, id uuid.UUID, username, email *string, passwordHash *string) (*User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type pgxRepository struct {
	db *pgxpool.Pool
}

// NewRepository creates a user repository backed by the given pool.
func NewRepository(db *pgxpool.Pool) Repository {
	return &pgxRepository{db: db}
}

type row interface {
	Scan(dest ...any) error
}

func scanUser(r row) (*User, error) {
	var u User
	err := r.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// conflictError classifies a unique violation by constraint name. Returns nil
// when err is not a unique violation.
func conflictError(err error) *apperror.AppError {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return nil
	}
	if strings.Contains(pgErr.ConstraintName, "email") {
		return apperror.NewConflictError("Email already in use", nil)
	}
	if strings.Contains(pgErr.ConstraintName, "username") {
		return apperror.NewConflictError("Username already in use", nil)
	}
	return apperror.NewConflictError("duplicate value", nil)
}

func buildListQuery(filter Filter) (string, []any) {
	var sb strings.Builder
	sb.WriteString(selectUserBase)
	sb.WriteString(" WHERE 1=1")
	args := make([]any, 0, 4)

	if filter.Username != nil {
		args = append(args, "%"+*filter.Username+"%")
		fmt.Fprintf(&sb, " AND username ILIKE $%d", len(args))
	}
	if filter.Email != nil {
		args = append(args, "%"+*filter.Email+"%")
		fmt.Fprintf(&sb, " AND email ILIKE $%d", len(args))
	}

	sb.WriteString(" ORDER BY created_at, id")

	if filter.Limit != nil {
		args = append(args, *filter.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	if filter.Offset != nil {
		args = append(args, *filter.Offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}

	return sb.String(), args
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]User, error) {
	query, args := buildListQuery(filter)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list users", err)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, apperror.NewDatabaseError("failed to scan user row", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to read user rows", err)
	}

	return users, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, selectUserBase+" WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("User with ID %s not found", id), nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user", err)
	}
	return u, nil
}

func (r *pgxRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, selectUserBase+" WHERE email = $1", email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("user not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user by email", err)
	}
	return u, nil
}

func (r *pgxRepository) Create(ctx context.Context, username, email, passwordHash string) (*User, error) {
	query := `INSERT INTO users (username, email, password)
	          VALUES ($1, $2, $3)
	          RETURNING id, username, email, password, created_at, updated_at`

	u, err := scanUser(r.db.QueryRow(ctx, query, username, email, passwordHash))
	if err != nil {
		if conflict := conflictError(err); conflict != nil {
			return nil, conflict
		}
		return nil, apperror.NewDatabaseError("failed to create user", err)
	}
	return u, nil
}

// Update applies only the supplied fields; the current row is locked so a
// concurrent update cannot interleave between read and write.
func (r *pgxRepository) Update(ctx context.Context, id uuid.UUID, username, email *string, passwordHash *string) (*User, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	current, err := scanUser(tx.QueryRow(ctx, selectUserBase+" WHERE id = $1 FOR UPDATE", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("User with ID %s not found", id), nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user for update", err)
	}

	newUsername := current.Username
	if username != nil {
		newUsername = *username
	}
	newEmail := current.Email
	if email != nil {
		newEmail = *email
	}
	newPassword := current.Password
	if passwordHash != nil {
		newPassword = *passwordHash
	}

	query := `UPDATE users
	          SET username = $1, email = $2, password = $3, updated_at = NOW()
	          WHERE id = $4
	          RETURNING id, username, email, password, created_at, updated_at`

	updated, err := scanUser(tx.QueryRow(ctx, query, newUsername, newEmail, newPassword, id))
	if err != nil {
		if conflict := conflictError(err); conflict != nil {
			return nil, conflict
		}
		return nil, apperror.NewDatabaseError("failed to update user", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperror.NewDatabaseError("failed to commit user update", err)
	}
	return updated, nil
}

func (r *pgxRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return apperror.NewDatabaseError("failed to delete user", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("User with ID %s not found", id), nil)
	}
	return nil
}
