// Package s3 provides an Amazon S3 implementation of blobstore.Store.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("relations/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	err = prepared.Save(ctx, store, "clicks-2024")
//
// # Features
//
//   - Range reads for partial fetches
//   - Multipart uploads for large row blobs
//   - CRC32C integrity checks on upload
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
