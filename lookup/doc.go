// Package lookup provides access to lookup documents: the remote documents
// whose field values a terms-lookup filter reads instead of carrying the
// values literally in the request.
//
// The Store interface is intentionally tiny (a single keyed read) so that
// backends are interchangeable:
//
//   - MemoryStore for tests and embedded deployments
//   - minio.Store for MinIO and S3-compatible object storage
//   - s3.Store for AWS S3
//
// Documents are stored as plain JSON objects and decode into
// metadata.Document. NewThrottled adds rate limiting in front of any
// backend; caching and in-flight deduplication live in the filter resolver,
// which is the only consumer on the query path.
package lookup
