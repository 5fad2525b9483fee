// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	store := s3.New(awss3.NewFromConfig(cfg), "my-bucket", func(o *s3.Options) {
//	    o.Prefix = "roster/"
//	})
//
// # Features
//
//   - Managed uploads with CRC32C integrity checks
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
