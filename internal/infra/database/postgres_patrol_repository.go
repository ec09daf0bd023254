package database

import (
	"context"
	"database/sql"
	"fmt"

	"jimpitan_ronda/internal/domain/patrol"
)

// PostgresPatrolRepository reads the duty group and member registries.
type PostgresPatrolRepository struct {
	db *sql.DB
}

func NewPostgresPatrolRepository(db *sql.DB) *PostgresPatrolRepository {
	return &PostgresPatrolRepository{db: db}
}

func (r *PostgresPatrolRepository) ListGroups(ctx context.Context) ([]*patrol.DutyGroup, error) {
	query := `SELECT id, name, schedule_spec FROM duty_groups ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing duty groups: %w", err)
	}
	defer rows.Close()

	groups := make([]*patrol.DutyGroup, 0)
	for rows.Next() {
		g := &patrol.DutyGroup{}
		if err := rows.Scan(&g.ID, &g.Name, &g.ScheduleSpec); err != nil {
			return nil, fmt.Errorf("error scanning duty group: %w", err)
		}
		groups = append(groups, g)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating duty groups: %w", err)
	}
	return groups, nil
}

func (r *PostgresPatrolRepository) ListMembers(ctx context.Context) ([]*patrol.Member, error) {
	query := `SELECT id, name, position, group_id FROM members ORDER BY name, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing members: %w", err)
	}
	defer rows.Close()

	members := make([]*patrol.Member, 0)
	for rows.Next() {
		m := &patrol.Member{}
		if err := rows.Scan(&m.ID, &m.Name, &m.Position, &m.GroupID); err != nil {
			return nil, fmt.Errorf("error scanning member: %w", err)
		}
		members = append(members, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating members: %w", err)
	}
	return members, nil
}

func (r *PostgresPatrolRepository) GetMember(ctx context.Context, id int64) (*patrol.Member, error) {
	query := `SELECT id, name, position, group_id FROM members WHERE id = $1`
	m := &patrol.Member{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&m.ID, &m.Name, &m.Position, &m.GroupID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("error getting member by ID: %w", err)
	}
	return m, nil
}
