// Package rootkey custodies per-organization root signing keys in Vault,
// adapted from internal/adapter/vault/secret_manager.go's client
// construction and Logical().Read shape, now keyed by organization
// instead of a single shared database secret.
package rootkey

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/hashicorp/vault/api"

	"github.com/seu-repo/parsec-backend/internal/domain"
	"github.com/seu-repo/parsec-backend/internal/ports"
	"github.com/seu-repo/parsec-backend/internal/service/trustchain"
)

type Store struct {
	client *api.Client
}

func NewStore(address, token string) (*Store, error) {
	config := api.DefaultConfig()
	config.Address = address

	client, err := api.NewClient(config)
	if err != nil {
		return nil, err
	}
	client.SetToken(token)

	return &Store{client: client}, nil
}

var _ ports.RootKeyStore = (*Store)(nil)

func secretPath(org domain.OrganizationID) string {
	return fmt.Sprintf("secret/data/organizations/%s/root-key", org)
}

func (s *Store) GenerateAndStore(ctx context.Context, org domain.OrganizationID) ([]byte, error) {
	signKey, verifyKey, err := trustchain.GenerateSigningKey()
	if err != nil {
		return nil, err
	}

	_, err = s.client.Logical().Write(secretPath(org), map[string]interface{}{
		"data": map[string]interface{}{
			"signing_key": base64.StdEncoding.EncodeToString(signKey[:]),
		},
	})
	if err != nil {
		return nil, err
	}
	return verifyKey[:], nil
}

func (s *Store) Sign(ctx context.Context, org domain.OrganizationID, payload []byte) ([]byte, error) {
	secret, err := s.client.Logical().Read(secretPath(org))
	if err != nil {
		return nil, err
	}
	if secret == nil {
		return nil, fmt.Errorf("no root key stored for organization %s", org)
	}
	data := secret.Data["data"].(map[string]interface{})
	raw, err := base64.StdEncoding.DecodeString(data["signing_key"].(string))
	if err != nil {
		return nil, err
	}
	var keyBytes [64]byte
	copy(keyBytes[:], raw)

	return trustchain.SignWithRootKey(trustchain.SigningKey(&keyBytes), payload), nil
}
