package archive

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	bucket, key, body string
	err               error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.bucket = aws.ToString(in.Bucket)
	f.key = aws.ToString(in.Key)
	raw, _ := io.ReadAll(in.Body)
	f.body = string(raw)
	return &s3.PutObjectOutput{}, nil
}

func TestArchiverPut(t *testing.T) {
	api := &fakeS3{}
	a := NewArchiver(api, "billing-archive", "webhooks")
	at := time.Date(2026, 3, 14, 23, 30, 0, 0, time.UTC)

	key, err := a.Put(context.Background(), "evt_1", []byte(`{"event":"order.paid"}`), at)
	require.NoError(t, err)
	require.Equal(t, "webhooks/2026-03-14/evt_1.json", key)
	require.Equal(t, "billing-archive", api.bucket)
	require.Equal(t, key, api.key)
	require.Equal(t, `{"event":"order.paid"}`, api.body)
}

func TestArchiverKeyWithoutEventID(t *testing.T) {
	a := NewArchiver(&fakeS3{}, "b", "webhooks")
	key := a.Key("", time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))
	require.True(t, strings.HasPrefix(key, "webhooks/2026-01-02/noid-"))
	require.True(t, strings.HasSuffix(key, ".json"))
}

func TestArchiverDisabled(t *testing.T) {
	a := NewArchiver(nil, "", "webhooks")
	require.False(t, a.Enabled())
	key, err := a.Put(context.Background(), "evt_1", []byte(`{}`), time.Now())
	require.NoError(t, err)
	require.Empty(t, key)
}

func TestArchiverError(t *testing.T) {
	a := NewArchiver(&fakeS3{err: errors.New("access denied")}, "b", "webhooks")
	_, err := a.Put(context.Background(), "evt_1", []byte(`{}`), time.Now())
	require.ErrorContains(t, err, "access denied")
}
