package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// EmailDao is a data access object that maps directly to the 'emails' table in PostgreSQL.
type EmailDao struct {
	bun.BaseModel `bun:"table:emails,alias:e"`
	ID            int64      `bun:"id,pk,autoincrement"`
	To            string     `bun:"to_address,notnull,type:varchar(320)"`
	From          string     `bun:"from_address,notnull,type:varchar(320)"`
	Subject       string     `bun:"subject,notnull,type:varchar(500)"`
	HTML          string     `bun:"html,type:text"`
	Status        string     `bun:"status,notnull,type:varchar(20)"`
	SentAt        *time.Time `bun:"sent_at"`
	CreatedAt     time.Time  `bun:"created_at,nullzero,default:current_timestamp"`
}

type pgStore struct {
	db *bun.DB
}

// NewStore creates a new postgres implementation of the outbox store
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

func (s *pgStore) CreateEmail(ctx context.Context, email *Email) error {
	dao := &EmailDao{
		To:      email.To,
		From:    email.From,
		Subject: email.Subject,
		HTML:    email.HTML,
		Status:  email.Status,
	}

	_, err := s.db.NewInsert().
		Model(dao).
		Returning("id, created_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create outbox row: %w", err)
	}

	email.ID = dao.ID
	email.CreatedAt = dao.CreatedAt
	return nil
}

func (s *pgStore) UpdateEmailStatus(ctx context.Context, id int64, status string, sentAt *time.Time) error {
	_, err := s.db.NewUpdate().
		Model((*EmailDao)(nil)).
		Set("status = ?", status).
		Set("sent_at = ?", sentAt).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update outbox row: %w", err)
	}
	return nil
}
