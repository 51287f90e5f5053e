package catalog

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"storefront/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string][]byte
}

func (f *fakeS3) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	key := aws.ToString(params.Key)
	body, ok := f.objects[key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

// mockLoader is a function-backed Loader for testing.
type mockLoader struct {
	loadFunc func(ctx context.Context, path string) ([]model.Product, error)
}

func (m *mockLoader) Load(ctx context.Context, path string) ([]model.Product, error) {
	return m.loadFunc(ctx, path)
}

func TestS3Loader_Load(t *testing.T) {
	client := &fakeS3{objects: map[string][]byte{
		"catalog/products.jsonl.gz": gzipLines(t, []string{`{"id":"P001","name":"Bamboo Toothbrush","price":"4.50","category":"bamboo","stock":3}`}),
	}}
	loader := NewS3LoaderWithClient(client, "seed-bucket", zerolog.Nop())

	products, err := loader.Load(context.Background(), "catalog/products.jsonl.gz")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, 3, products[0].Stock)

	_, err = loader.Load(context.Background(), "catalog/missing.gz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket=seed-bucket, key=catalog/missing.gz")
}

func TestFallbackLoader(t *testing.T) {
	s3Products := []model.Product{{ID: "S3"}}
	localProducts := []model.Product{{ID: "LOCAL"}}

	tests := []struct {
		name      string
		s3        Loader
		wantIDs   []string
		wantLocal bool
	}{
		{
			name: "S3 succeeds",
			s3: &mockLoader{loadFunc: func(_ context.Context, path string) ([]model.Product, error) {
				assert.Equal(t, "catalog/products.gz", path, "S3 key should have prefix")
				return s3Products, nil
			}},
			wantIDs: []string{"S3"},
		},
		{
			name: "S3 fails",
			s3: &mockLoader{loadFunc: func(context.Context, string) ([]model.Product, error) {
				return nil, errors.New("S3 connection failed")
			}},
			wantIDs:   []string{"LOCAL"},
			wantLocal: true,
		},
		{
			name:      "S3 disabled",
			wantIDs:   []string{"LOCAL"},
			wantLocal: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			localCalled := false
			local := &mockLoader{loadFunc: func(_ context.Context, path string) ([]model.Product, error) {
				localCalled = true
				assert.Equal(t, "products.gz", path, "local path should not have prefix")
				return localProducts, nil
			}}

			products, err := NewFallbackLoader(tt.s3, local, "catalog/", zerolog.Nop()).Load(context.Background(), "products.gz")

			require.NoError(t, err)
			var ids []string
			for _, p := range products {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantLocal, localCalled)
		})
	}
}

func TestFallbackLoader_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s3 := &mockLoader{loadFunc: func(ctx context.Context, _ string) ([]model.Product, error) {
		return nil, ctx.Err()
	}}
	local := &mockLoader{loadFunc: func(context.Context, string) ([]model.Product, error) {
		t.Error("file loader should not be called once the context is done")
		return nil, nil
	}}

	_, err := NewFallbackLoader(s3, local, "", zerolog.Nop()).Load(ctx, "products.gz")
	assert.ErrorIs(t, err, context.Canceled)
}
