package archive

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	cfgpkg "github.com/fatflowers/agrobill/pkg/config"
	"github.com/fatflowers/agrobill/pkg/tool"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// PutObjectAPI is the single S3 call the archive makes.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Archiver stores raw, authenticated webhook bodies for later replay.
// A nil API disables archiving.
type Archiver struct {
	api    PutObjectAPI
	bucket string
	prefix string
}

func NewArchiver(api PutObjectAPI, bucket, prefix string) *Archiver {
	return &Archiver{api: api, bucket: bucket, prefix: prefix}
}

func (a *Archiver) Enabled() bool {
	return a != nil && a.api != nil
}

// Key returns <prefix>/<yyyy-mm-dd>/<event-id>.json for the delivery time.
func (a *Archiver) Key(eventID string, at time.Time) string {
	if eventID == "" {
		eventID = "noid-" + tool.GenerateUUIDV7()
	}
	return path.Join(a.prefix, at.UTC().Format(time.DateOnly), eventID+".json")
}

// Put uploads body and returns the object key. Disabled archivers return "".
func (a *Archiver) Put(ctx context.Context, eventID string, body []byte, at time.Time) (string, error) {
	if !a.Enabled() {
		return "", nil
	}
	key := a.Key(eventID, at)
	_, err := a.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", a.bucket, key, err)
	}
	return key, nil
}

// New builds the archiver from config; an empty bucket disables it.
func New(cfg *cfgpkg.Config, log *zap.SugaredLogger) (*Archiver, error) {
	ac := cfg.Archive
	if !ac.Enabled() {
		log.Infow("webhook archive disabled")
		return NewArchiver(nil, "", ac.Prefix), nil
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(ac.Region)}
	if ac.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			ac.AccessKeyID,
			ac.SecretAccessKey,
			"",
		)))
	}
	awsConfig, err := config.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if ac.EndpointURL != "" {
			o.BaseEndpoint = aws.String(ac.EndpointURL)
			o.UsePathStyle = true
		}
	})
	log.Infow("webhook archive enabled", "bucket", ac.Bucket, "prefix", ac.Prefix)
	return NewArchiver(client, ac.Bucket, ac.Prefix), nil
}

var Module = fx.Options(
	fx.Provide(New),
)
