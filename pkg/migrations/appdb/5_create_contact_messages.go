package appdb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	"github.com/gsdclabs/gsdc-backend/pkg/contact"
	mghelper "github.com/gsdclabs/gsdc-backend/pkg/pgutil/migrations"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating contact_messages table...")
		return mghelper.CreateSchema(ctx, db, &contact.MessageDao{})
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping contact_messages table...")
		return mghelper.DropTables(ctx, db, &contact.MessageDao{})
	})
}
