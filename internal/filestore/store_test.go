package filestore

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reportlens/reportlens/pkg/logging"
)

type fakeS3 struct {
	objects map[string][]byte
	lastKey string
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[*params.Key] = data
	f.lastKey = *params.Key
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*params.Key]
	if !ok {
		return nil, io.EOF
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(string(data)))}, nil
}

func TestPutAndGet(t *testing.T) {
	fake := &fakeS3{}
	store := NewStore(fake, "reports-bucket", logging.Default())

	key, err := store.Put(context.Background(), "user-1", "lab results.pdf", "application/pdf", []byte("pdf-bytes"))
	require.NoError(t, err)
	require.NotEmpty(t, key)

	assert.True(t, strings.HasPrefix(key, "users/user-1/reports/"))
	assert.True(t, strings.HasSuffix(key, "-lab_results.pdf"))

	data, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, "pdf-bytes", string(data))
}

func TestDisabledStoreIsNoop(t *testing.T) {
	store := NewStore(nil, "", logging.Default())
	assert.False(t, store.Enabled())

	key, err := store.Put(context.Background(), "user-1", "a.pdf", "application/pdf", []byte("x"))
	require.NoError(t, err)
	assert.Empty(t, key)

	_, err = store.Get(context.Background(), "anything")
	assert.Error(t, err)
}

func TestPutSkipsEmptyDocument(t *testing.T) {
	fake := &fakeS3{}
	store := NewStore(fake, "reports-bucket", logging.Default())

	key, err := store.Put(context.Background(), "user-1", "a.pdf", "application/pdf", nil)
	require.NoError(t, err)
	assert.Empty(t, key)
	assert.Empty(t, fake.objects)
}
