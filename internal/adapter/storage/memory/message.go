package memory

import (
	"context"
	"sort"

	"github.com/hashicorp/go-memdb"

	"github.com/seu-repo/parsec-backend/internal/domain"
)

type messageRepo struct{ txn *memdb.Txn }

// Append assigns the next 1-based index for (org, recipient) and inserts
// the message, mirroring the mailbox's append-only contract.
func (r messageRepo) Append(ctx context.Context, m *domain.Message) (int, error) {
	existing, err := r.since(m.OrganizationID, m.Recipient, 0)
	if err != nil {
		return 0, err
	}
	m.Index = len(existing) + 1
	key := messageKey(m.OrganizationID, m.Recipient, m.Index)
	if err := r.txn.Insert("message", &messageRow{
		Key:          key,
		RecipientKey: recipientKey(m.OrganizationID, m.Recipient),
		Data:         m,
	}); err != nil {
		return 0, err
	}
	return m.Index, nil
}

func (r messageRepo) since(org domain.OrganizationID, recipient domain.UserID, offset int) ([]*domain.Message, error) {
	it, err := r.txn.Get("message", "recipient", recipientKey(org, recipient))
	if err != nil {
		return nil, err
	}
	var out []*domain.Message
	for raw := it.Next(); raw != nil; raw = it.Next() {
		m := raw.(*messageRow).Data
		if m.Index > offset {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}

func (r messageRepo) Since(ctx context.Context, org domain.OrganizationID, recipient domain.UserID, offset int) ([]*domain.Message, error) {
	return r.since(org, recipient, offset)
}
