// Package inventory enumerates candidate screen recordings in S3 and fetches
// them to local temp files for sampling.
package inventory

import (
	"context"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"github.com/worklens/worklens/internal/recording"
)

// s3API is the subset of the S3 client used by this package, seamed out so
// tests can fake pagination and object bodies.
type s3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Lister lists an employee's recordings for a given capture date.
type Lister struct {
	client s3API
	bucket string
	prefix string
}

// NewLister creates a Lister over the given bucket and root prefix.
// Recordings live under <prefix>/<employeeID>/.
func NewLister(client *s3.Client, bucket, prefix string) *Lister {
	return &Lister{client: client, bucket: bucket, prefix: prefix}
}

func newListerWithAPI(client s3API, bucket, prefix string) *Lister {
	return &Lister{client: client, bucket: bucket, prefix: prefix}
}

// List enumerates all objects under the employee's namespace and returns the
// recordings whose parsed capture date equals date (YYYY-MM-DD), ascending by
// capture timestamp. Objects that do not parse, or whose embedded employee
// token does not match employeeID, are skipped silently. Listing failures are
// returned to the caller; a whole batch must not proceed on a partial view.
func (l *Lister) List(ctx context.Context, employeeID, date string) ([]recording.Reference, error) {
	base := strings.TrimSuffix(l.prefix, "/") + "/" + employeeID + "/"
	log.Info().
		Str("bucket", l.bucket).
		Str("prefix", base).
		Str("date", date).
		Msg("Listing recordings")

	wantToken := strings.ToLower(employeeID)
	var refs []recording.Reference

	input := &s3.ListObjectsV2Input{Bucket: &l.bucket, Prefix: &base}
	for {
		page, err := l.client.ListObjectsV2(ctx, input)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			key := *obj.Key
			if !strings.HasSuffix(strings.ToLower(key), ".webm") {
				continue
			}
			ref := recording.Parse(path.Base(key))
			if ref == nil {
				continue
			}
			if ref.EmployeeToken != "" && ref.EmployeeToken != wantToken {
				log.Debug().
					Str("key", key).
					Str("embeddedToken", ref.EmployeeToken).
					Msg("Skipping recording with mismatched employee token")
				continue
			}
			if ref.CaptureDate() != date {
				continue
			}
			ref.Key = key
			refs = append(refs, *ref)
		}
		if page.IsTruncated == nil || !*page.IsTruncated {
			break
		}
		input.ContinuationToken = page.NextContinuationToken
	}

	sort.Slice(refs, func(i, j int) bool {
		return refs[i].CapturedAt.Before(refs[j].CapturedAt)
	})

	log.Info().
		Int("count", len(refs)).
		Str("employeeId", employeeID).
		Str("date", date).
		Msg("Recording listing complete")
	return refs, nil
}
