// Package s3 archives failed email records to Amazon S3 or an S3-compatible
// service before they are removed from the local store.
//
// Every record becomes one folder:
//
//	<prefix>/<record id>/<attachment filename>
//	<prefix>/<record id>/record.json
//
// record.json is uploaded after the attachments, so its presence means the
// folder is complete.
//
//	archiver, err := s3.New(ctx, s3.Config{
//		Bucket: "ops-archive",
//		Region: "eu-central-1",
//		Prefix: "failed-emails",
//	})
//	if err != nil {
//		return err
//	}
//	keys, err := archiver.Archive(ctx, rec)
//
// For MinIO and similar services set Endpoint and ForcePathStyle. Without
// AccessKeyID and SecretKey the default AWS credential chain applies.
//
// SDK errors are mapped onto the package sentinels (ErrAccessDenied,
// ErrBucketNotFound, ErrServiceUnavailable and others) so callers can use errors.Is.
package s3
