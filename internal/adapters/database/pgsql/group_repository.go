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

// GroupRepository persists groups in the groups table. Member emails and the
// budget/expense reference lists ride along as JSONB.
type GroupRepository struct {
	db *pgxpool.Pool
}

func NewGroupRepository(db *pgxpool.Pool) *GroupRepository {
	return &GroupRepository{db: db}
}

var _ portsrepo.GroupRepository = (*GroupRepository)(nil)

func (r *GroupRepository) Save(ctx context.Context, group *domain.Group) (string, error) {
	if group.GroupID == "" {
		group.GroupID = uuid.NewString()
	}
	query := `
        INSERT INTO groups (group_id, name, description, member_emails, expense_ids, budget_ids, created_at, created_by, last_updated_at, last_updated_by)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        ON CONFLICT (group_id) DO UPDATE SET
            name = EXCLUDED.name,
            description = EXCLUDED.description,
            member_emails = EXCLUDED.member_emails,
            expense_ids = EXCLUDED.expense_ids,
            budget_ids = EXCLUDED.budget_ids,
            last_updated_at = EXCLUDED.last_updated_at,
            last_updated_by = EXCLUDED.last_updated_by;
    `
	_, err := r.db.Exec(ctx, query,
		group.GroupID,
		group.Name,
		group.Description,
		group.MemberEmails,
		group.ExpenseIDs,
		group.BudgetIDs,
		group.CreatedAt,
		group.CreatedBy,
		group.LastUpdatedAt,
		group.LastUpdatedBy,
	)
	if err != nil {
		return "", fmt.Errorf("failed to save group: %w", err)
	}
	return group.GroupID, nil
}

const selectGroupColumns = `
        SELECT group_id, name, description, member_emails, expense_ids, budget_ids, created_at, created_by, last_updated_at, last_updated_by
        FROM groups`

func scanGroup(row pgx.Row) (*domain.Group, error) {
	var group domain.Group
	err := row.Scan(
		&group.GroupID,
		&group.Name,
		&group.Description,
		&group.MemberEmails,
		&group.ExpenseIDs,
		&group.BudgetIDs,
		&group.CreatedAt,
		&group.CreatedBy,
		&group.LastUpdatedAt,
		&group.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *GroupRepository) FindByID(ctx context.Context, groupID string) (*domain.Group, error) {
	group, err := scanGroup(r.db.QueryRow(ctx, selectGroupColumns+` WHERE group_id = $1;`, groupID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no group with id %s", apperrors.ErrNotFound, groupID)
		}
		return nil, fmt.Errorf("failed to find group by id: %w", err)
	}
	return group, nil
}

func (r *GroupRepository) FindAll(ctx context.Context) ([]domain.Group, error) {
	return r.queryGroups(ctx, selectGroupColumns+` ORDER BY created_at, group_id;`)
}

// FindGroupsByMember relies on the JSONB containment operator; the member
// list carries plain email strings.
func (r *GroupRepository) FindGroupsByMember(ctx context.Context, email string) ([]domain.Group, error) {
	query := selectGroupColumns + ` WHERE member_emails @> to_jsonb(ARRAY[$1::text]) ORDER BY created_at, group_id;`
	return r.queryGroups(ctx, query, email)
}

func (r *GroupRepository) queryGroups(ctx context.Context, query string, args ...any) ([]domain.Group, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer rows.Close()

	groups := []domain.Group{}
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group row: %w", err)
		}
		groups = append(groups, *group)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating group rows: %w", rows.Err())
	}
	return groups, nil
}

func (r *GroupRepository) DeleteByID(ctx context.Context, groupID string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM groups WHERE group_id = $1;`, groupID)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: no group with id %s", apperrors.ErrNotFound, groupID)
	}
	return nil
}
