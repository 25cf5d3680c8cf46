package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/melodex/melodex/pkg/melodex"
)

const (
	// dataPrefix names documents written by the current release.
	dataPrefix = "asset-data"
	// legacyPrefix names documents written by the music-only release,
	// still listed for migration.
	legacyPrefix = "music-data"
)

// api is the subset of the S3 client the store uses. Narrowed so tests
// can substitute a stub.
type api interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Store is an S3-compatible implementation of the melodex.AssetStore
// interface. The whole collection is one JSON object; writes replace
// every object under both naming prefixes with a freshly named one.
type Store struct {
	client api
	bucket string
	now    func() time.Time
}

// Config options for the S3 store
type Config struct {
	Region          string // AWS region
	Bucket          string // S3 bucket name
	AccessKeyID     string // AWS access key ID
	SecretAccessKey string // AWS secret access key
	Endpoint        string // Optional custom endpoint for S3-compatible services
	UsePathStyle    bool   // Use path-style addressing (default: false)
}

// New creates a new S3-compatible asset store
func New(config Config) (melodex.AssetStore, error) {
	if config.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}

	if config.Region == "" {
		config.Region = "us-east-1"
	}

	var awsCfg aws.Config
	var err error

	if config.AccessKeyID != "" && config.SecretAccessKey != "" {
		awsCfg, err = awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(config.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				config.AccessKeyID,
				config.SecretAccessKey,
				"",
			)),
		)
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(config.Region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Options []func(*s3.Options)
	if config.Endpoint != "" {
		s3Options = append(s3Options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(config.Endpoint)
			o.UsePathStyle = config.UsePathStyle
		})
	}

	return &Store{
		client: s3.NewFromConfig(awsCfg, s3Options...),
		bucket: config.Bucket,
		now:    time.Now,
	}, nil
}

// Load lists every document under both prefixes, fetches the most
// recently uploaded one and applies the migration pass. Any failure
// degrades to an empty collection.
func (s *Store) Load(ctx context.Context) ([]melodex.AssetRecord, error) {
	objects, err := s.listDataObjects(ctx)
	if err != nil {
		slog.Error("asset store list failed", "bucket", s.bucket, "error", err)
		return []melodex.AssetRecord{}, nil
	}

	if len(objects) == 0 {
		// Expected state for a fresh deployment.
		return []melodex.AssetRecord{}, nil
	}

	// Most recent upload wins, by timestamp rather than name.
	sort.Slice(objects, func(i, j int) bool {
		return objects[i].LastModified.After(*objects[j].LastModified)
	})
	key := aws.ToString(objects[0].Key)

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		slog.Error("asset store fetch failed", "key", key, "error", err)
		return []melodex.AssetRecord{}, nil
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		slog.Error("asset store read failed", "key", key, "error", err)
		return []melodex.AssetRecord{}, nil
	}

	var records []melodex.AssetRecord
	if err := json.Unmarshal(data, &records); err != nil {
		slog.Error("asset store parse failed", "key", key, "error", err)
		return []melodex.AssetRecord{}, nil
	}

	return melodex.NormalizeRecords(records), nil
}

// Save deletes every document under both prefixes (best effort) and
// uploads the full collection as one new object. The delete-then-put
// sequence is not atomic; concurrent writers race with last-write-wins
// semantics.
func (s *Store) Save(ctx context.Context, records []melodex.AssetRecord) error {
	objects, err := s.listDataObjects(ctx)
	if err != nil {
		slog.Error("asset store cleanup list failed", "bucket", s.bucket, "error", err)
	}
	for _, obj := range objects {
		key := aws.ToString(obj.Key)
		if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		}); err != nil {
			slog.Error("asset store cleanup delete failed", "key", key, "error", err)
		}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return &melodex.StoreError{Backend: "s3", Op: "marshal", Err: err}
	}

	key := fmt.Sprintf("%s-%d.json", dataPrefix, s.now().UnixMilli())
	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	}); err != nil {
		return &melodex.StoreError{Backend: "s3", Key: key, Op: "put", Err: err}
	}

	return nil
}

// listDataObjects returns every object under the current and legacy
// prefixes.
func (s *Store) listDataObjects(ctx context.Context) ([]types.Object, error) {
	var objects []types.Object
	for _, prefix := range []string{dataPrefix, legacyPrefix} {
		var continuation *string
		for {
			out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
				Bucket:            aws.String(s.bucket),
				Prefix:            aws.String(prefix),
				ContinuationToken: continuation,
			})
			if err != nil {
				return nil, err
			}
			for _, obj := range out.Contents {
				if strings.HasPrefix(aws.ToString(obj.Key), prefix) {
					objects = append(objects, obj)
				}
			}
			if out.NextContinuationToken == nil {
				break
			}
			continuation = out.NextContinuationToken
		}
	}
	return objects, nil
}
