package appdb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	"github.com/gsdclabs/gsdc-backend/pkg/kycstore"
	mghelper "github.com/gsdclabs/gsdc-backend/pkg/pgutil/migrations"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating kyc_requests table...")
		if err := mghelper.CreateSchema(ctx, db, &kycstore.RequestDao{}); err != nil {
			return err
		}
		// Create indexes
		return mghelper.CreateModelIndexes(ctx, db, &kycstore.RequestDao{}, "user_address", "applicant_id", "status")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping kyc_requests table...")
		return mghelper.DropTables(ctx, db, &kycstore.RequestDao{})
	})
}
