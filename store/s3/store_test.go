package s3_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/bentobox/generic"
	s3store "github.com/warp/bentobox/store/s3"
)

// fakeObjects is an in-memory bucket.
type fakeObjects struct {
	objects map[string][]byte
	puts    []*s3.PutObjectInput
	failGet error
}

func newFake() *fakeObjects {
	return &fakeObjects{objects: make(map[string][]byte)}
}

func (f *fakeObjects) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.failGet != nil {
		return nil, f.failGet
	}
	blob, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("missing")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(blob))}, nil
}

func (f *fakeObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	blob, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = blob
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func TestStore_GetPut(t *testing.T) {
	// GIVEN: A store with a key prefix over an empty bucket
	// WHEN: A blob is written and read back
	// THEN: The object lands under the prefix and a missing key is ErrNotFound

	ctx := context.Background()
	fake := newFake()
	store := s3store.NewWithClient(fake, "boards", "clinic")

	_, err := store.Get(ctx, "bentobox")
	assert.ErrorIs(t, err, generic.ErrNotFound)

	require.NoError(t, store.Put(ctx, "bentobox", []byte(`{"timeFormat":"12h"}`)))

	assert.Contains(t, fake.objects, "boards/clinic/bentobox")
	require.Len(t, fake.puts, 1)
	assert.Equal(t, int64(20), aws.ToInt64(fake.puts[0].ContentLength))
	assert.Equal(t, "application/json", aws.ToString(fake.puts[0].ContentType))

	got, err := store.Get(ctx, "bentobox")
	require.NoError(t, err)
	assert.Equal(t, `{"timeFormat":"12h"}`, string(got))
}

func TestStore_GetError(t *testing.T) {
	fake := newFake()
	fake.failGet = errors.New("connection reset")
	store := s3store.NewWithClient(fake, "boards", "")

	_, err := store.Get(context.Background(), "bentobox")

	require.Error(t, err)
	assert.False(t, errors.Is(err, generic.ErrNotFound))
	assert.Contains(t, err.Error(), "connection reset")
}

func TestNew_RequiresBucket(t *testing.T) {
	_, err := s3store.New(context.Background(), s3store.Config{})
	assert.Error(t, err)
}
