package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/splitstack/splitledger/internal/apperrors"
	"github.com/splitstack/splitledger/internal/core/domain"
	portsrepo "github.com/splitstack/splitledger/internal/core/ports/repositories"
)

// UserRepository persists users in the users table. The expense reference
// list rides along as JSONB.
type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

var _ portsrepo.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Save(ctx context.Context, user *domain.User) (string, error) {
	if user.UserID == "" {
		user.UserID = uuid.NewString()
	}
	query := `
        INSERT INTO users (user_id, name, email, balance, password_hash, expense_ids, created_at, created_by, last_updated_at, last_updated_by)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        ON CONFLICT (user_id) DO UPDATE SET
            name = EXCLUDED.name,
            email = EXCLUDED.email,
            balance = EXCLUDED.balance,
            password_hash = EXCLUDED.password_hash,
            expense_ids = EXCLUDED.expense_ids,
            last_updated_at = EXCLUDED.last_updated_at,
            last_updated_by = EXCLUDED.last_updated_by;
    `
	_, err := r.db.Exec(ctx, query,
		user.UserID,
		user.Name,
		user.Email,
		user.Balance,
		user.PasswordHash,
		user.ExpenseIDs,
		user.CreatedAt,
		user.CreatedBy,
		user.LastUpdatedAt,
		user.LastUpdatedBy,
	)
	if err != nil {
		return "", fmt.Errorf("failed to save user: %w", err)
	}
	return user.UserID, nil
}

const selectUserColumns = `
        SELECT user_id, name, email, balance, password_hash, expense_ids, created_at, created_by, last_updated_at, last_updated_by
        FROM users`

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.UserID,
		&user.Name,
		&user.Email,
		&user.Balance,
		&user.PasswordHash,
		&user.ExpenseIDs,
		&user.CreatedAt,
		&user.CreatedBy,
		&user.LastUpdatedAt,
		&user.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, selectUserColumns+` WHERE user_id = $1;`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no user with id %s", apperrors.ErrNotFound, userID)
		}
		return nil, fmt.Errorf("failed to find user by id: %w", err)
	}
	return user, nil
}

func (r *UserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, selectUserColumns+` WHERE email = $1;`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no user with email %s", apperrors.ErrNotFound, email)
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

func (r *UserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.Query(ctx, selectUserColumns+` ORDER BY created_at, user_id;`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, *user)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", rows.Err())
	}
	return users, nil
}

func (r *UserRepository) DeleteByID(ctx context.Context, userID string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM users WHERE user_id = $1;`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: no user with id %s", apperrors.ErrNotFound, userID)
	}
	return nil
}
