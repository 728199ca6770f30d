package inventory

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// DownloadToTempFile fetches an S3 object into a new temporary file and
// returns the file path plus a cleanup function that removes it. Cleanup
// failures are logged, never escalated — the artifact is scoped to one
// pipeline run and the OS reclaims temp space eventually anyway.
func (l *Lister) DownloadToTempFile(ctx context.Context, key string) (string, func(), error) {
	tmpFile, err := os.CreateTemp("", "worklens-*"+filepath.Ext(key))
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}

	log.Debug().
		Str("bucket", l.bucket).
		Str("key", key).
		Str("localPath", tmpFile.Name()).
		Msg("Downloading recording from S3")

	result, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &l.bucket,
		Key:    &key,
	})
	if err != nil {
		tmpFile.Close()
		os.Remove(tmpFile.Name())
		return "", nil, fmt.Errorf("S3 GetObject: %w", err)
	}
	defer result.Body.Close()

	if _, err := io.Copy(tmpFile, result.Body); err != nil {
		tmpFile.Close()
		os.Remove(tmpFile.Name())
		return "", nil, fmt.Errorf("download: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpFile.Name())
		return "", nil, fmt.Errorf("close temp file: %w", err)
	}

	name := tmpFile.Name()
	cleanup := func() {
		if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", name).Msg("Failed to remove downloaded recording")
		}
	}
	return name, cleanup, nil
}
