package cache

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 is an in-memory bucket implementing S3API.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	fail    error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	obj, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("no such key")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(bytes.Clone(obj)))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	delete(f.objects, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3PageCache(t *testing.T) {
	pageCacheContract(t, func(t *testing.T) PageCache {
		return NewS3PageCache(newFakeS3(), "bucket", "pagecache/")
	})

	t.Run("Keys are prefixed", func(t *testing.T) {
		fake := newFakeS3()
		c := NewS3PageCache(fake, "bucket", "pagecache/")
		require.NoError(t, c.Set(context.Background(), "post_1", []byte("x")))

		_, ok := fake.objects["bucket/pagecache/post_1"]
		assert.True(t, ok, "expected object under prefixed key, have %v", fake.objects)
	})

	t.Run("Backend errors surface", func(t *testing.T) {
		fake := newFakeS3()
		fake.fail = errors.New("connection reset")
		c := NewS3PageCache(fake, "bucket", "")
		ctx := context.Background()

		_, ok, err := c.Get(ctx, "post_1")
		assert.Error(t, err)
		assert.False(t, ok)
		assert.Error(t, c.Set(ctx, "post_1", []byte("x")))
		assert.Error(t, c.Delete(ctx, "post_1"))
	})
}

func TestIsNotFound(t *testing.T) {
	assert.False(t, isNotFound(nil))
	assert.False(t, isNotFound(errors.New("boom")))
	assert.True(t, isNotFound(&types.NoSuchKey{}))
}
