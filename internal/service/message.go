package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/flexfolio/internal/model"
	"github.com/sakif/flexfolio/internal/repository"
	"github.com/sakif/flexfolio/internal/validate"
)

// Notifier tells an owner that a message arrived.
type Notifier interface {
	NewMessage(ctx context.Context, owner *model.User, m *model.Message) error
}

// MessageService is the contact inbox: anonymous visitors write, the owner
// reads, marks and deletes.
type MessageService struct {
	messages repository.MessageRepository
	users    repository.UserRepository
	notifier Notifier
	validate *validate.Validator
	logger   *slog.Logger
}

func NewMessageService(
	messages repository.MessageRepository,
	users repository.UserRepository,
	notifier Notifier,
	v *validate.Validator,
	logger *slog.Logger,
) *MessageService {
	return &MessageService{
		messages: messages,
		users:    users,
		notifier: notifier,
		validate: v,
		logger:   logger,
	}
}

// Send delivers a contact-form message to the owner of in.Username. Offline
// portfolios do not accept messages. A failed notification is logged and
// does not fail the send.
func (s *MessageService) Send(ctx context.Context, in model.ContactInput) (*model.Message, error) {
	in.Username = normalize(in.Username)
	in.SenderName = strings.TrimSpace(in.SenderName)
	in.SenderEmail = strings.TrimSpace(in.SenderEmail)
	in.Subject = strings.TrimSpace(in.Subject)
	in.Body = strings.TrimSpace(in.Body)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	owner, err := resolvePublicUser(ctx, s.users, in.Username)
	if err != nil {
		return nil, err
	}

	m := &model.Message{
		OwnerID:     owner.ID,
		SenderName:  in.SenderName,
		SenderEmail: in.SenderEmail,
		Subject:     in.Subject,
		Body:        in.Body,
	}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("storing message for %s: %w", owner.Username, err)
	}

	s.logger.Info("message received",
		slog.String("ownerID", owner.ID),
		slog.String("id", m.ID),
	)

	if err := s.notifier.NewMessage(ctx, owner, m); err != nil {
		s.logger.Warn("new message notification failed",
			slog.String("ownerID", owner.ID),
			slog.String("id", m.ID),
			slog.String("error", err.Error()),
		)
	}
	return m, nil
}

func (s *MessageService) List(ctx context.Context, ownerID string) ([]model.Message, error) {
	messages, err := s.messages.List(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	return messages, nil
}

func (s *MessageService) Get(ctx context.Context, ownerID, id string) (*model.Message, error) {
	return s.messages.Get(ctx, ownerID, id)
}

// MarkRead sets the read flag and returns the updated message.
func (s *MessageService) MarkRead(ctx context.Context, ownerID, id string, isRead bool) (*model.Message, error) {
	if err := s.messages.SetRead(ctx, ownerID, id, isRead); err != nil {
		return nil, err
	}
	return s.messages.Get(ctx, ownerID, id)
}

func (s *MessageService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.messages.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	s.logger.Info("message deleted", slog.String("ownerID", ownerID), slog.String("id", id))
	return nil
}

func (s *MessageService) UnreadCount(ctx context.Context, ownerID string) (int, error) {
	n, err := s.messages.CountUnread(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("counting unread messages: %w", err)
	}
	return n, nil
}
