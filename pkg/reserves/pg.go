package reserves

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// AssetDao is a data access object that maps directly to the 'reserve_assets' table in PostgreSQL.
type AssetDao struct {
	bun.BaseModel `bun:"table:reserve_assets,alias:ra"`
	ID            int64      `bun:"id,pk,autoincrement"`
	Name          string     `bun:"name,notnull,type:varchar(200)"`
	Custodian     string     `bun:"custodian,notnull,type:varchar(200)"`
	Amount        string     `bun:"amount,notnull,type:numeric(30,10)"`
	Currency      string     `bun:"currency,notnull,type:varchar(10)"`
	AuditedAt     *time.Time `bun:"audited_at"`
	ReportURL     *string    `bun:"report_url,type:text"`
	CreatedAt     time.Time  `bun:"created_at,nullzero,default:current_timestamp"`
}

// Store provides access to reserve assets.
type Store interface {
	List(ctx context.Context) ([]*Asset, error)
	Create(ctx context.Context, asset *Asset) error
	Update(ctx context.Context, asset *Asset) error
}

type pgStore struct {
	db *bun.DB
}

// NewStore creates a reserve-asset store on the given database.
func NewStore(db *bun.DB) Store {
	return &pgStore{db: db}
}

func (s *pgStore) List(ctx context.Context) ([]*Asset, error) {
	var daos []AssetDao
	err := s.db.NewSelect().
		Model(&daos).
		Order("currency ASC", "name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reserve assets: %w", err)
	}

	assets := make([]*Asset, 0, len(daos))
	for i := range daos {
		asset, err := toAsset(&daos[i])
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	return assets, nil
}

func (s *pgStore) Create(ctx context.Context, asset *Asset) error {
	dao := toAssetDao(asset)
	_, err := s.db.NewInsert().
		Model(dao).
		Returning("id, created_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create reserve asset: %w", err)
	}

	asset.ID = dao.ID
	asset.CreatedAt = dao.CreatedAt
	return nil
}

func (s *pgStore) Update(ctx context.Context, asset *Asset) error {
	dao := toAssetDao(asset)
	res, err := s.db.NewUpdate().
		Model(dao).
		Column("name", "custodian", "amount", "currency", "audited_at", "report_url").
		Where("id = ?", asset.ID).
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrAssetNotFound
		}
		return fmt.Errorf("failed to update reserve asset: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrAssetNotFound
	}
	return nil
}

func toAssetDao(asset *Asset) *AssetDao {
	dao := &AssetDao{
		ID:        asset.ID,
		Name:      asset.Name,
		Custodian: asset.Custodian,
		Amount:    asset.Amount.String(),
		Currency:  strings.ToUpper(strings.TrimSpace(asset.Currency)),
		AuditedAt: asset.AuditedAt,
		CreatedAt: asset.CreatedAt,
	}
	if asset.ReportURL != "" {
		dao.ReportURL = &asset.ReportURL
	}
	return dao
}

func toAsset(dao *AssetDao) (*Asset, error) {
	amount, err := decimal.NewFromString(dao.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid stored amount %q: %w", dao.Amount, err)
	}

	asset := &Asset{
		ID:        dao.ID,
		Name:      dao.Name,
		Custodian: dao.Custodian,
		Amount:    amount,
		Currency:  dao.Currency,
		AuditedAt: dao.AuditedAt,
		CreatedAt: dao.CreatedAt,
	}
	if dao.ReportURL != nil {
		asset.ReportURL = *dao.ReportURL
	}
	return asset, nil
}
