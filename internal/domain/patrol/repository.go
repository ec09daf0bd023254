package patrol

import "context"

// Repository reads the duty group and member registries. The core never mutates them.
type Repository interface {
	ListGroups(ctx context.Context) ([]*DutyGroup, error)
	ListMembers(ctx context.Context) ([]*Member, error)
	GetMember(ctx context.Context, id int64) (*Member, error)
}
