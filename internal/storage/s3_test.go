package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string][]byte
	types   map[string]string
	fail    error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	key := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.objects[key] = b
	f.types[key] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	key := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	b, ok := f.objects[key]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("missing")}
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(b)),
		ContentType:   aws.String(f.types[key]),
		ContentLength: aws.Int64(int64(len(b))),
	}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Store_SaveOpenDelete(t *testing.T) {
	fake := newFakeS3()
	store := newS3Store(fake, "posters", "uploads/")
	ctx := context.Background()
	key := NewKey(".gif")

	require.NoError(t, store.Save(ctx, key, strings.NewReader("GIF89a"), 6, "image/gif"))
	assert.Contains(t, fake.objects, "posters/uploads/"+key)

	obj, err := store.Open(ctx, key)
	require.NoError(t, err)
	defer obj.Body.Close()
	assert.Equal(t, "image/gif", obj.ContentType)
	assert.Equal(t, int64(6), obj.Size)

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Open(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestS3Store_PutError(t *testing.T) {
	fake := newFakeS3()
	fake.fail = errors.New("access denied")
	store := newS3Store(fake, "posters", "")

	err := store.Save(context.Background(), NewKey(".png"), strings.NewReader("x"), 1, "image/png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestNewS3Store_StaticCredentials(t *testing.T) {
	store, err := NewS3Store(context.Background(), S3Options{
		Bucket:       "posters",
		Region:       "us-east-1",
		Endpoint:     "http://localhost:9000",
		AccessKey:    "minio",
		SecretKey:    "minio123",
		UsePathStyle: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "posters", store.bucket)
}
