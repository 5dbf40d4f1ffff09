package contact

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	apperrors "github.com/gsdclabs/gsdc-backend/pkg/app/errors"
)

// Service implements the contact inbox.
type Service struct {
	store    Store
	validate *validator.Validate
	logger   *zap.Logger
}

// NewService creates a contact service over the given store.
func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{
		store:    store,
		validate: validator.New(),
		logger:   logger,
	}
}

// Create validates and stores a contact-form submission.
func (s *Service) Create(ctx context.Context, msg *Message) error {
	if err := s.validate.Struct(msg); err != nil {
		return apperrors.BadRequestError(err, "invalid contact message")
	}

	if err := s.store.Create(ctx, msg); err != nil {
		return err
	}

	s.logger.Info("Contact message received",
		zap.Int64("id", msg.ID),
		zap.String("email", msg.Email))
	return nil
}

// List returns the admin inbox, unread first.
func (s *Service) List(ctx context.Context) ([]*Message, error) {
	return s.store.List(ctx)
}

// MarkRead marks one message as handled.
func (s *Service) MarkRead(ctx context.Context, id int64) error {
	if err := s.store.MarkRead(ctx, id); err != nil {
		if errors.Is(err, ErrMessageNotFound) {
			return apperrors.ResourceNotFoundError(err, "contact message not found")
		}
		return err
	}
	return nil
}
