package appdb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	mghelper "github.com/gsdclabs/gsdc-backend/pkg/pgutil/migrations"
	"github.com/gsdclabs/gsdc-backend/pkg/reserves"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating reserve_assets table...")
		if err := mghelper.CreateSchema(ctx, db, &reserves.AssetDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &reserves.AssetDao{}, "currency")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping reserve_assets table...")
		return mghelper.DropTables(ctx, db, &reserves.AssetDao{})
	})
}
