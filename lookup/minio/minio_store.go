// Package minio provides a lookup.Store backed by MinIO or any
// S3-compatible object storage.
//
// Lookup documents are stored one JSON object per document under
// <prefix>/<index>/<id>.json.
package minio

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path"

	"github.com/minio/minio-go/v7"

	"github.com/hupe1980/vecquery/lookup"
	"github.com/hupe1980/vecquery/metadata"
)

// Store implements lookup.Store for MinIO and S3-compatible storage.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
}

var _ lookup.Store = (*Store)(nil)

// NewStore creates a new MinIO lookup store.
// bucket is the MinIO bucket name; rootPrefix is prepended to all keys
// (e.g. "lookups/").
func NewStore(client *minio.Client, bucket, rootPrefix string) *Store {
	return &Store{
		client: client,
		bucket: bucket,
		prefix: rootPrefix,
	}
}

func (s *Store) key(index, id string) string {
	return path.Join(s.prefix, index, id+".json")
}

// Get fetches and decodes the lookup document for (index, id).
func (s *Store) Get(ctx context.Context, index, id string) (metadata.Document, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key(index, id), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.Code == "NotFound" {
			return nil, lookup.ErrNotFound
		}
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
	_, err = s.client.PutObject(ctx, s.bucket, s.key(index, id), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	return err
}

// Delete removes a lookup document. Deleting a missing document is not an
// error.
func (s *Store) Delete(ctx context.Context, index, id string) error {
	err := s.client.RemoveObject(ctx, s.bucket, s.key(index, id), minio.RemoveObjectOptions{})
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.Code == "NotFound" {
			return nil
		}
		return err
	}
	return nil
}
