package archive

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, f.err
}

func TestS3PutPrefixesKey(t *testing.T) {
	fake := &fakePutter{}
	a := &S3{client: fake, bucket: "bucket", prefix: "ecourts"}

	err := a.Put(context.Background(), QueryKey(42), "", []byte("<html/>"))
	require.NoError(t, err)

	assert.Equal(t, "bucket", aws.ToString(fake.input.Bucket))
	assert.Equal(t, "ecourts/queries/42.html", aws.ToString(fake.input.Key))
	assert.Contains(t, aws.ToString(fake.input.ContentType), "text/html")
	assert.Equal(t, "<html/>", string(fake.body))
}

func TestS3PutWrapsError(t *testing.T) {
	a := &S3{client: &fakePutter{err: errors.New("denied")}, bucket: "b"}
	err := a.Put(context.Background(), DebugKey("/tmp/debug_response_1.txt"), "text/plain", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "debug/debug_response_1.txt")
}

func TestNopPut(t *testing.T) {
	assert.NoError(t, Nop{}.Put(context.Background(), "k", "", nil))
}
