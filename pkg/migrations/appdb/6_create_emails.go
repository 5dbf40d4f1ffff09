package appdb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	"github.com/gsdclabs/gsdc-backend/pkg/notify"
	mghelper "github.com/gsdclabs/gsdc-backend/pkg/pgutil/migrations"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating emails table...")
		if err := mghelper.CreateSchema(ctx, db, &notify.EmailDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &notify.EmailDao{}, "status")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping emails table...")
		return mghelper.DropTables(ctx, db, &notify.EmailDao{})
	})
}
