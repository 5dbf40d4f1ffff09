package appdb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	mghelper "github.com/gsdclabs/gsdc-backend/pkg/pgutil/migrations"
	"github.com/gsdclabs/gsdc-backend/pkg/rates"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating exchange_rates table...")
		if err := mghelper.CreateSchema(ctx, db, &rates.RateDao{}); err != nil {
			return err
		}
		// One quote per directed pair; the upsert keys on this.
		_, err := db.ExecContext(ctx,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_exchange_rates_currency_from_currency_to
			 ON exchange_rates (currency_from, currency_to)`)
		return err
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping exchange_rates table...")
		return mghelper.DropTables(ctx, db, &rates.RateDao{})
	})
}
