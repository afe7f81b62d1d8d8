// Package message implements the per-recipient mailbox of spec.md §4.5.
package message

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/parsec-backend/internal/domain"
	"github.com/seu-repo/parsec-backend/internal/ports"
)

type Service struct {
	driver ports.Driver
	log    *zap.Logger
}

func NewService(driver ports.Driver, log *zap.Logger) ports.MessageService {
	return &Service{driver: driver, log: log}
}

var _ ports.MessageService = (*Service)(nil)

func (s *Service) Send(ctx context.Context, org domain.OrganizationID, recipient domain.UserID, sender domain.DeviceID, body []byte, timestamp time.Time) error {
	tx, err := s.driver.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	m := &domain.Message{OrganizationID: org, Recipient: recipient, Sender: sender, Timestamp: timestamp, Body: body}
	if _, err := tx.Messages().Append(ctx, m); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	return s.driver.Events().Publish(ctx, ports.Event{
		OrganizationID: org,
		Kind:           ports.EventMessageReceived,
		Author:         sender,
		Recipient:      recipient,
		At:             timestamp,
	})
}

func (s *Service) Get(ctx context.Context, org domain.OrganizationID, recipient domain.UserID, offset int) ([]*domain.Message, error) {
	tx, err := s.driver.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	msgs, err := tx.Messages().Since(ctx, org, recipient, offset)
	if err != nil {
		return nil, err
	}
	return msgs, tx.Commit()
}
