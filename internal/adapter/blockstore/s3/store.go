// Package s3 implements ports.BlockStore on an S3-compatible object
// store, the "object storage" blob-store driver named alongside local
// disk in spec.md §1. aws-sdk-go-v2 is declared in the teacher's go.mod
// but never imported anywhere in its source; this package gives it a
// real caller.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/seu-repo/parsec-backend/internal/domain"
)

type Store struct {
	client *s3.Client
	bucket string
}

func New(client *s3.Client, bucket string) *Store {
	return &Store{client: client, bucket: bucket}
}

func (s *Store) key(org domain.OrganizationID, id domain.BlockID) string {
	return fmt.Sprintf("%s/%s", org, id.String())
}

func (s *Store) Create(ctx context.Context, org domain.OrganizationID, id domain.BlockID, data []byte) error {
	key := s.key(org, id)

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)})
	if err == nil {
		return domain.ErrAlreadyExists
	}
	var notFound *types.NotFound
	if !errors.As(err, &notFound) {
		return fmt.Errorf("blockstore: head object: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("blockstore: put object: %w", err)
	}
	return nil
}

func (s *Store) Read(ctx context.Context, org domain.OrganizationID, id domain.BlockID) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(s.key(org, id))})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("blockstore: get object: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("blockstore: read object body: %w", err)
	}
	return data, nil
}
