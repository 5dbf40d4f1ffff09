package appdb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	mghelper "github.com/gsdclabs/gsdc-backend/pkg/pgutil/migrations"
	"github.com/gsdclabs/gsdc-backend/pkg/roles"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating admin_roles table...")
		if err := mghelper.CreateSchema(ctx, db, &roles.GrantDao{}); err != nil {
			return err
		}
		if err := mghelper.CreateModelIndexes(ctx, db, &roles.GrantDao{}, "wallet_address"); err != nil {
			return err
		}
		// Grants are idempotent per (address, role) pair.
		_, err := db.ExecContext(ctx,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_admin_roles_wallet_address_role
			 ON admin_roles (wallet_address, role)`)
		return err
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping admin_roles table...")
		return mghelper.DropTables(ctx, db, &roles.GrantDao{})
	})
}
