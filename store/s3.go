package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"

	"mediafetch/media"
)

// S3Store is a DurableStore kept on AWS S3 (or any S3-compatible endpoint).
// The issued token is the object key relative to Prefix, so tokens stay
// opaque to callers and survive bucket renames via configuration.
type S3Store struct {
	svc    *s3.S3
	Bucket string
	Prefix string
}

// NewS3Store creates a durable store over the given bucket. prefix is
// prepended to every key, allowing one bucket to back several stores.
// The credentials in the session are used for all accesses.
func NewS3Store(bucket, prefix string, awsSession *session.Session) *S3Store {
	return &S3Store{
		svc:    s3.New(awsSession),
		Bucket: bucket,
		Prefix: prefix,
	}
}

// Upload stores the file at localPath under a freshly minted key and reports
// the key back as the token for the matching media kind.
func (s *S3Store) Upload(ctx context.Context, kind media.Kind, localPath string) (UploadResult, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return UploadResult{}, fmt.Errorf("open upload source: %w", err)
	}
	defer f.Close()

	token := string(kind) + "/" + uuid.NewString() + kind.Ext()
	_, err = s.svc.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Prefix + token),
		Body:   f,
	})
	if err != nil {
		return UploadResult{}, fmt.Errorf("s3 put %s: %w", token, err)
	}

	result := UploadResult{}
	switch kind {
	case media.KindAudio:
		result.AudioToken = token
	case media.KindVideo:
		result.VideoToken = token
	default:
		result.DocumentToken = token
	}
	return result, nil
}

// Fetch streams the object stored under token to localPath. The write is
// atomic: the canonical path only appears once the full object is on disk.
func (s *S3Store) Fetch(ctx context.Context, token string, localPath string) error {
	out, err := s.svc.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Prefix + strings.TrimPrefix(token, "/")),
	})
	if err != nil {
		return fmt.Errorf("s3 get %s: %w", token, err)
	}
	defer out.Body.Close()

	w, err := newAtomicWriter(localPath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, out.Body); err != nil {
		w.Abort()
		return fmt.Errorf("s3 read %s: %w", token, err)
	}
	return w.Commit()
}
