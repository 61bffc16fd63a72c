// Package storetest holds in-memory fakes of the AWS client interfaces used
// by package store.
package storetest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// FakeS3 implements store.S3API over a map. Keys listed in FailPut make
// PutObject fail; GetErr, when set, is returned by every GetObject.
type FakeS3 struct {
	mu      sync.Mutex
	Objects map[string][]byte
	FailPut map[string]bool
	GetErr  error
	Puts    int
}

func NewFakeS3() *FakeS3 {
	return &FakeS3{Objects: map[string][]byte{}, FailPut: map[string]bool{}}
}

func (f *FakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Puts++
	key := aws.ToString(in.Key)
	if f.FailPut[key] {
		return nil, errors.New("AccessDenied: fake put failure")
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.Objects[key] = b
	return &s3.PutObjectOutput{}, nil
}

func (f *FakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	b, ok := f.Objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{Message: aws.String("fake: no such key")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(b))}, nil
}

// Keys returns stored keys with the given prefix, sorted.
func (f *FakeS3) Keys(prefix string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for k := range f.Objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func (f *FakeS3) Get(key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.Objects[key]
	return b, ok
}

func (f *FakeS3) Set(key string, body []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Objects[key] = body
}
