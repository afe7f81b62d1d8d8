package postgres

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	"github.com/seu-repo/parsec-backend/internal/domain"
)

type messageRepo struct{ db *gorm.DB }

// Append assigns the next 1-based index for (org, recipient) within the
// caller's transaction; the (organization_id, recipient, index) primary
// key backstops a concurrent Append racing on the same mailbox.
func (r messageRepo) Append(ctx context.Context, m *domain.Message) (int, error) {
	var max sql.NullInt64
	if err := r.db.Model(&domain.Message{}).
		Where("organization_id = ? AND recipient = ?", string(m.OrganizationID), string(m.Recipient)).
		Select("MAX(index)").Scan(&max).Error; err != nil {
		return 0, err
	}
	m.Index = 1
	if max.Valid {
		m.Index = int(max.Int64) + 1
	}
	if err := r.db.Create(m).Error; err != nil {
		return 0, err
	}
	return m.Index, nil
}

func (r messageRepo) Since(ctx context.Context, org domain.OrganizationID, recipient domain.UserID, offset int) ([]*domain.Message, error) {
	var messages []*domain.Message
	if err := r.db.Where("organization_id = ? AND recipient = ? AND index > ?", string(org), string(recipient), offset).
		Order("index ASC").
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}
