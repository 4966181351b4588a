package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeList(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestStaticTrimsBlanks(t *testing.T) {
	urls, err := Static{" https://a/x ", "", "https://b/y"}.URLs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a/x", "https://b/y"}, urls)
}

func TestMultiKeepsOrderAndDropsRepeats(t *testing.T) {
	m := Multi{
		Static{"https://a/1", "https://a/2"},
		Static{"https://a/2", "https://a/3"},
	}
	urls, err := m.URLs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a/1", "https://a/2", "https://a/3"}, urls)
}

type failingSource struct{}

func (failingSource) URLs(context.Context) ([]string, error) {
	return nil, errors.New("unavailable")
}

func TestMultiPropagatesErrors(t *testing.T) {
	_, err := Multi{Static{"https://a/1"}, failingSource{}}.URLs(context.Background())
	assert.Error(t, err)
}

func TestListFileText(t *testing.T) {
	path := writeList(t, "urls.txt", "# mirrors\nhttps://a.example/one.iso\n\n   https://b.example/two.iso  \n#https://c.example/off.iso\n")
	urls, err := ListFile{Path: path}.URLs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example/one.iso", "https://b.example/two.iso"}, urls)
}

func TestListFileYAMLDocument(t *testing.T) {
	path := writeList(t, "urls.yaml", `urls:
  - https://a.example/one.iso
  - link: https://b.example/two.iso
  - link: ""
`)
	urls, err := ListFile{Path: path}.URLs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example/one.iso", "https://b.example/two.iso"}, urls)
}

func TestListFileYAMLSequence(t *testing.T) {
	path := writeList(t, "urls.yml", "- https://a.example/one.iso\n- https://b.example/two.iso\n")
	urls, err := ListFile{Path: path}.URLs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example/one.iso", "https://b.example/two.iso"}, urls)
}

func TestListFileErrors(t *testing.T) {
	_, err := ListFile{Path: filepath.Join(t.TempDir(), "absent.txt")}.URLs(context.Background())
	assert.Error(t, err)

	path := writeList(t, "broken.yaml", "urls: [unterminated")
	_, err = ListFile{Path: path}.URLs(context.Background())
	assert.Error(t, err)
}

func TestParseS3URL(t *testing.T) {
	bucket, prefix, err := ParseS3URL("s3://datasets/2024/raw/")
	require.NoError(t, err)
	assert.Equal(t, "datasets", bucket)
	assert.Equal(t, "2024/raw/", prefix)

	bucket, prefix, err = ParseS3URL("s3://datasets")
	require.NoError(t, err)
	assert.Equal(t, "datasets", bucket)
	assert.Empty(t, prefix)

	_, _, err = ParseS3URL("s3://")
	assert.Error(t, err)
}

type fakeLister struct {
	pages [][]types.Object
	calls int
}

func (f *fakeLister) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	page := f.calls
	f.calls++
	out := &s3.ListObjectsV2Output{Contents: f.pages[page]}
	if page+1 < len(f.pages) {
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String(fmt.Sprintf("page-%d", page+1))
	}
	return out, nil
}

type fakePresigner struct {
	expires []time.Duration
}

func (f *fakePresigner) PresignGetObject(_ context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	var opts s3.PresignOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	f.expires = append(f.expires, opts.Expires)
	return &v4.PresignedHTTPRequest{
		URL:    fmt.Sprintf("https://%s.s3.amazonaws.com/%s?X-Amz-Signature=sig", *in.Bucket, *in.Key),
		Method: "GET",
	}, nil
}

func TestS3PrefixPresignsEveryObject(t *testing.T) {
	lister := &fakeLister{pages: [][]types.Object{
		{
			{Key: aws.String("raw/"), Size: aws.Int64(0)},
			{Key: aws.String("raw/a.parquet"), Size: aws.Int64(10)},
		},
		{
			{Key: aws.String("raw/b.parquet"), Size: aws.Int64(20)},
			{Key: nil},
		},
	}}
	presigner := &fakePresigner{}
	src := newS3Prefix("datasets", "raw/", time.Hour, lister, presigner)

	urls, err := src.URLs(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, lister.calls)
	assert.Equal(t, []string{
		"https://datasets.s3.amazonaws.com/raw/a.parquet?X-Amz-Signature=sig",
		"https://datasets.s3.amazonaws.com/raw/b.parquet?X-Amz-Signature=sig",
	}, urls)
	assert.Equal(t, []time.Duration{time.Hour, time.Hour}, presigner.expires)
}

func TestS3PrefixDefaultTTL(t *testing.T) {
	src := newS3Prefix("b", "", 0, &fakeLister{pages: [][]types.Object{{}}}, &fakePresigner{})
	assert.Equal(t, DefaultPresignTTL, src.TTL)
}
