package contact

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// MessageDao is a data access object that maps directly to the 'contact_messages' table in PostgreSQL.
type MessageDao struct {
	bun.BaseModel `bun:"table:contact_messages,alias:cm"`
	ID            int64     `bun:"id,pk,autoincrement"`
	Name          string    `bun:"name,notnull,type:varchar(200)"`
	Email         string    `bun:"email,notnull,type:varchar(320)"`
	Subject       *string   `bun:"subject,type:varchar(300)"`
	Message       string    `bun:"message,notnull,type:text"`
	Read          bool      `bun:"read,notnull,default:false"`
	CreatedAt     time.Time `bun:"created_at,nullzero,default:current_timestamp"`
}

// Store provides access to contact messages.
type Store interface {
	Create(ctx context.Context, msg *Message) error
	List(ctx context.Context) ([]*Message, error)
	MarkRead(ctx context.Context, id int64) error
}

type pgStore struct {
	db *bun.DB
}

// NewStore creates a contact-message store on the given database.
func NewStore(db *bun.DB) Store {
	return &pgStore{db: db}
}

func (s *pgStore) Create(ctx context.Context, msg *Message) error {
	dao := &MessageDao{
		Name:    msg.Name,
		Email:   msg.Email,
		Message: msg.Message,
	}
	if msg.Subject != "" {
		dao.Subject = &msg.Subject
	}

	_, err := s.db.NewInsert().
		Model(dao).
		Returning("id, created_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create contact message: %w", err)
	}

	msg.ID = dao.ID
	msg.CreatedAt = dao.CreatedAt
	return nil
}

// List returns every message, unread first, newest within each group.
func (s *pgStore) List(ctx context.Context) ([]*Message, error) {
	var daos []MessageDao
	err := s.db.NewSelect().
		Model(&daos).
		Order("read ASC", "created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list contact messages: %w", err)
	}

	messages := make([]*Message, 0, len(daos))
	for i := range daos {
		messages = append(messages, toMessage(&daos[i]))
	}
	return messages, nil
}

func (s *pgStore) MarkRead(ctx context.Context, id int64) error {
	res, err := s.db.NewUpdate().
		Model((*MessageDao)(nil)).
		Set("read = true").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark contact message read: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrMessageNotFound
	}
	return nil
}

func toMessage(dao *MessageDao) *Message {
	msg := &Message{
		ID:        dao.ID,
		Name:      dao.Name,
		Email:     dao.Email,
		Message:   dao.Message,
		Read:      dao.Read,
		CreatedAt: dao.CreatedAt,
	}
	if dao.Subject != nil {
		msg.Subject = *dao.Subject
	}
	return msg
}
