package roles

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// GrantDao is a data access object that maps directly to the 'admin_roles' table in PostgreSQL.
type GrantDao struct {
	bun.BaseModel `bun:"table:admin_roles,alias:ar"`
	ID            int64     `bun:"id,pk,autoincrement"`
	WalletAddress string    `bun:"wallet_address,notnull,type:varchar(42)"`
	Role          string    `bun:"role,notnull,type:varchar(20)"`
	CreatedAt     time.Time `bun:"created_at,nullzero,default:current_timestamp"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,default:current_timestamp"`
}

// Store provides access to role grants.
type Store interface {
	GrantedRoles(ctx context.Context, address string) ([]Role, error)
	Grant(ctx context.Context, address string, role Role) error
	Revoke(ctx context.Context, address string, role Role) error
}

type pgStore struct {
	db *bun.DB
}

// NewStore creates a role store on the given database.
func NewStore(db *bun.DB) Store {
	return &pgStore{db: db}
}

// GrantedRoles returns the roles explicitly granted to the address,
// without derivation.
func (s *pgStore) GrantedRoles(ctx context.Context, address string) ([]Role, error) {
	var daos []GrantDao
	err := s.db.NewSelect().
		Model(&daos).
		Where("wallet_address = ?", address).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}

	granted := make([]Role, 0, len(daos))
	for _, dao := range daos {
		granted = append(granted, Role(dao.Role))
	}
	return granted, nil
}

func (s *pgStore) Grant(ctx context.Context, address string, role Role) error {
	dao := &GrantDao{
		WalletAddress: address,
		Role:          string(role),
	}
	_, err := s.db.NewInsert().
		Model(dao).
		On("CONFLICT (wallet_address, role) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to grant role: %w", err)
	}
	return nil
}

func (s *pgStore) Revoke(ctx context.Context, address string, role Role) error {
	_, err := s.db.NewDelete().
		Model((*GrantDao)(nil)).
		Where("wallet_address = ?", address).
		Where("role = ?", role).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to revoke role: %w", err)
	}
	return nil
}
