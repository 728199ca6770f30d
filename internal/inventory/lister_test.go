package inventory

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// fakeS3 serves canned pages and object bodies.
type fakeS3 struct {
	pages   [][]string // keys per page
	listErr error
	body    string
	getErr  error
	calls   int
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	page := f.calls
	f.calls++
	out := &s3.ListObjectsV2Output{}
	for _, k := range f.pages[page] {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	truncated := page < len(f.pages)-1
	out.IsTruncated = &truncated
	if truncated {
		out.NextContinuationToken = aws.String("token")
	}
	return out, nil
}

func (f *fakeS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

func TestListFiltersAndSorts(t *testing.T) {
	base := "activitytrackercontainer/abc123/"
	fake := &fakeS3{pages: [][]string{{
		base + "ScreenRecording_File_20240115_150000_vt1-abc123.webm",
		base + "ScreenRecording_File_20240115_093000_vt1-abc123.webm",
		base + "notes.txt",
		base + "ScreenRecording_File_20240115_100000_vt1-deadbeef.webm", // wrong token
		base + "ScreenRecording_File_20240116_093000_vt1-abc123.webm",   // wrong date
		base + "Recording_20240115_093000.webm",                         // unparseable
	}}}

	l := newListerWithAPI(fake, "bucket", "activitytrackercontainer")
	refs, err := l.List(context.Background(), "abc123", "2024-01-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(refs) != 2 {
		t.Fatalf("got %d refs, want 2", len(refs))
	}
	// Ascending by capture timestamp.
	if refs[0].FileName != "ScreenRecording_File_20240115_093000_vt1-abc123.webm" {
		t.Errorf("refs[0] = %s", refs[0].FileName)
	}
	if refs[1].FileName != "ScreenRecording_File_20240115_150000_vt1-abc123.webm" {
		t.Errorf("refs[1] = %s", refs[1].FileName)
	}
	if refs[0].Key != base+refs[0].FileName {
		t.Errorf("Key = %s", refs[0].Key)
	}
}

func TestListPaginates(t *testing.T) {
	base := "activitytrackercontainer/abc123/"
	fake := &fakeS3{pages: [][]string{
		{base + "ScreenRecording_File_20240115_093000_vt1-abc123.webm"},
		{base + "ScreenRecording_File_20240115_103000_vt1-abc123.webm"},
		{base + "ScreenRecording_File_20240115_113000_vt1-abc123.webm"},
	}}

	l := newListerWithAPI(fake, "bucket", "activitytrackercontainer")
	refs, err := l.List(context.Background(), "abc123", "2024-01-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(refs) != 3 {
		t.Errorf("got %d refs across pages, want 3", len(refs))
	}
	if fake.calls != 3 {
		t.Errorf("ListObjectsV2 called %d times, want 3", fake.calls)
	}
}

func TestListPropagatesError(t *testing.T) {
	fake := &fakeS3{listErr: errors.New("access denied")}
	l := newListerWithAPI(fake, "bucket", "prefix")
	if _, err := l.List(context.Background(), "abc123", "2024-01-15"); err == nil {
		t.Error("expected listing error to propagate")
	}
}

func TestListCaseInsensitiveToken(t *testing.T) {
	base := "activitytrackercontainer/ABC123/"
	fake := &fakeS3{pages: [][]string{{
		base + "ScreenRecording_File_20240115_093000_vt1-ABC123.webm",
	}}}
	l := newListerWithAPI(fake, "bucket", "activitytrackercontainer")
	refs, err := l.List(context.Background(), "ABC123", "2024-01-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(refs) != 1 {
		t.Fatalf("got %d refs, want 1 (token match must be case-insensitive)", len(refs))
	}
}

func TestDownloadToTempFile(t *testing.T) {
	fake := &fakeS3{pages: [][]string{{}}, body: "video-bytes"}
	l := newListerWithAPI(fake, "bucket", "prefix")

	path, cleanup, err := l.DownloadToTempFile(context.Background(), "prefix/emp1/a.webm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read downloaded file: %v", err)
	}
	if string(data) != "video-bytes" {
		t.Errorf("content = %q", data)
	}

	cleanup()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("cleanup should remove the temp file")
	}
}

func TestDownloadToTempFileError(t *testing.T) {
	fake := &fakeS3{pages: [][]string{{}}, getErr: errors.New("no such key")}
	l := newListerWithAPI(fake, "bucket", "prefix")
	if _, _, err := l.DownloadToTempFile(context.Background(), "k"); err == nil {
		t.Error("expected GetObject error to propagate")
	}
}
