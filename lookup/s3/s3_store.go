// Package s3 provides a lookup.Store backed by AWS S3.
//
// Lookup documents are stored one JSON object per document under
// <prefix>/<index>/<id>.json.
package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/hupe1980/vecquery/lookup"
	"github.com/hupe1980/vecquery/metadata"
)

// Store implements lookup.Store for S3.
type Store struct {
	client *s3.Client
	bucket string
	prefix string
}

var _ lookup.Store = (*Store)(nil)

// NewStore creates a new S3 lookup store.
// rootPrefix is prepended to all keys (e.g. "lookups/").
func NewStore(client *s3.Client, bucket, rootPrefix string) *Store {
	return &Store{
		client: client,
		bucket: bucket,
		prefix: rootPrefix,
	}
}

// NewStoreFromConfig creates a Store using the default AWS config chain
// (environment, shared config, instance metadata).
func NewStoreFromConfig(ctx context.Context, bucket, rootPrefix string) (*Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return NewStore(s3.NewFromConfig(cfg), bucket, rootPrefix), nil
}

func (s *Store) key(index, id string) string {
	return path.Join(s.prefix, index, id+".json")
}

// Get fetches and decodes the lookup document for (index, id).
func (s *Store) Get(ctx context.Context, index, id string) (metadata.Document, error) {
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(index, id)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, lookup.ErrNotFound
		}
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return nil, lookup.ErrNotFound
		}
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var doc metadata.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Put writes a lookup document as a JSON object.
func (s *Store) Put(ctx context.Context, index, id string, doc metadata.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(index, id)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	return err
}

// Delete removes a lookup document.
func (s *Store) Delete(ctx context.Context, index, id string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(index, id)),
	})
	return err
}
