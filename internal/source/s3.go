package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

const DefaultPresignTTL = 12 * time.Hour

type getObjectPresigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Prefix turns every object under s3://bucket/prefix into a presigned GET
// URL, so the objects download through the same resumable HTTP path.
type S3Prefix struct {
	Bucket    string
	Prefix    string
	TTL       time.Duration
	lister    s3.ListObjectsV2APIClient
	presigner getObjectPresigner
}

func ParseS3URL(url string) (string, string, error) {
	url = strings.TrimPrefix(url, "s3://")
	parts := strings.SplitN(url, "/", 2)
	if len(parts) < 1 || parts[0] == "" {
		return "", "", fmt.Errorf("invalid S3 URL format")
	}
	bucket := parts[0]
	key := ""
	if len(parts) > 1 {
		key = parts[1]
	}
	return bucket, key, nil
}

// NewS3Prefix loads AWS configuration for profile (empty for the default chain)
// and pins the client to the bucket's own region so presigned URLs are valid.
func NewS3Prefix(ctx context.Context, uri, profile string, ttl time.Duration) (*S3Prefix, error) {
	bucket, prefix, err := ParseS3URL(uri)
	if err != nil {
		return nil, err
	}
	opts := []func(*config.LoadOptions) error{config.WithRetryMode(aws.RetryModeAdaptive)}
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}
	client := s3.NewFromConfig(cfg)
	region, err := manager.GetBucketRegion(ctx, client, bucket)
	if err != nil {
		log.Warn().Str("op", "source/s3").Err(err).Msgf("Could not resolve region for bucket %s, using %s", bucket, cfg.Region)
	} else if region != cfg.Region {
		log.Debug().Str("op", "source/s3").Msgf("Bucket %s lives in %s", bucket, region)
		client = s3.NewFromConfig(cfg, func(o *s3.Options) {
			o.Region = region
		})
	}
	return newS3Prefix(bucket, prefix, ttl, client, s3.NewPresignClient(client)), nil
}

func newS3Prefix(bucket, prefix string, ttl time.Duration, lister s3.ListObjectsV2APIClient, presigner getObjectPresigner) *S3Prefix {
	if ttl <= 0 {
		ttl = DefaultPresignTTL
	}
	return &S3Prefix{
		Bucket:    bucket,
		Prefix:    prefix,
		TTL:       ttl,
		lister:    lister,
		presigner: presigner,
	}
}

func (s *S3Prefix) URLs(ctx context.Context) ([]string, error) {
	var urls []string
	paginator := s3.NewListObjectsV2Paginator(s.lister, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.Bucket),
		Prefix: aws.String(s.Prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("error listing objects: %w", err)
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			// Skip directory markers (0-byte objects ending with /)
			if strings.HasSuffix(*obj.Key, "/") && (obj.Size == nil || *obj.Size == 0) {
				continue
			}
			req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
				Bucket: aws.String(s.Bucket),
				Key:    obj.Key,
			}, s3.WithPresignExpires(s.TTL))
			if err != nil {
				return nil, fmt.Errorf("error presigning s3://%s/%s: %w", s.Bucket, *obj.Key, err)
			}
			urls = append(urls, req.URL)
		}
	}
	log.Info().Str("op", "source/s3").Msgf("Found %d objects under s3://%s/%s", len(urls), s.Bucket, s.Prefix)
	return urls, nil
}
