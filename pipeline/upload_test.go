package pipeline

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quayside/hoist/registry"
)

const testBinaryPRN = "prn:1:b5510900-a2a0-49ce-9a34-6e7eb729cf82:binary:f3a21505-4f7e-4557-a549-2d617a194bfd"

// transferRecorder captures pre-signed PUT requests.
type transferRecorder struct {
	mu     sync.Mutex
	bodies map[int][]byte
}

func newTransferServer(t *testing.T) (*httptest.Server, *transferRecorder) {
	t.Helper()
	rec := &transferRecorder{bodies: make(map[int][]byte)}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "application/octet-stream", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		sum := sha256.Sum256(body)
		assert.Equal(t, base64.StdEncoding.EncodeToString(sum[:]), r.Header.Get("x-amz-checksum-sha256"))
		assert.Equal(t, int64(len(body)), r.ContentLength)

		var index int
		_, err = fmt.Sscanf(r.URL.Path, "/parts/%d", &index)
		require.NoError(t, err)

		rec.mu.Lock()
		rec.bodies[index] = body
		rec.mu.Unlock()

		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func testContent(t *testing.T, size int) []byte {
	t.Helper()
	content := make([]byte, size)
	_, err := rand.Read(content)
	require.NoError(t, err)
	return content
}

func TestUploader_Upload(t *testing.T) {
	t.Parallel()

	srv, rec := newTransferServer(t)
	content := testContent(t, int(MinPartSize)+100)

	var mu sync.Mutex
	var created []registry.CreateBinaryPartParams

	api := &mockRegistry{
		CreateBinaryPartFunc: func(_ context.Context, binaryPRN string, params registry.CreateBinaryPartParams) (*registry.BinaryPart, error) {
			assert.Equal(t, testBinaryPRN, binaryPRN)
			assert.Equal(t, uint64(len(content)), params.ExpectedBinarySize)

			mu.Lock()
			created = append(created, params)
			mu.Unlock()

			return &registry.BinaryPart{
				Index:              params.Index,
				Size:               params.Size,
				Hash:               params.Hash,
				State:              registry.PartStatePending,
				PresignedUploadURL: fmt.Sprintf("%s/parts/%d", srv.URL, params.Index),
			}, nil
		},
	}

	var events []ProgressEvent
	uploader := NewUploader(api,
		WithConcurrency(2),
		WithUploadProgress(func(e ProgressEvent) {
			mu.Lock()
			events = append(events, e)
			mu.Unlock()
		}),
	)

	binary := &registry.Binary{PRN: testBinaryPRN, State: registry.BinaryStateUploadable}
	require.NoError(t, uploader.Upload(context.Background(), binary, content))

	require.Len(t, created, 2)
	require.Len(t, rec.bodies, 2)

	var reassembled []byte
	for index := 1; index <= 2; index++ {
		body, ok := rec.bodies[index]
		require.True(t, ok, "part %d not transferred", index)

		sum := sha256.Sum256(body)
		for _, params := range created {
			if params.Index == index {
				assert.Equal(t, hex.EncodeToString(sum[:]), params.Hash)
				assert.Equal(t, uint64(len(body)), params.Size)
			}
		}
		reassembled = append(reassembled, body...)
	}
	assert.True(t, bytes.Equal(content, reassembled), "reassembled parts must equal the content")

	require.NotEmpty(t, events)
	var sawComplete bool
	for _, e := range events {
		assert.Equal(t, uint64(len(content)), e.BytesTotal)
		if e.BytesDone == e.BytesTotal {
			sawComplete = true
		}
	}
	assert.True(t, sawComplete, "progress must reach the total")
}

func TestUploader_Upload_ResumeSkipsValidParts(t *testing.T) {
	t.Parallel()

	srv, rec := newTransferServer(t)
	content := testContent(t, 2*int(MinPartSize)+100)

	api := &mockRegistry{
		ListBinaryPartsFunc: func(_ context.Context, _ string, _ registry.ListParams) ([]registry.BinaryPart, string, error) {
			return []registry.BinaryPart{
				{Index: 1, Size: MinPartSize, State: registry.PartStateValid},
				{Index: 2, Size: MinPartSize, State: registry.PartStatePending},
			}, "", nil
		},
		CreateBinaryPartFunc: func(_ context.Context, _ string, params registry.CreateBinaryPartParams) (*registry.BinaryPart, error) {
			assert.NotEqual(t, 1, params.Index, "valid part must not be re-registered")
			return &registry.BinaryPart{
				Index:              params.Index,
				Size:               params.Size,
				State:              registry.PartStatePending,
				PresignedUploadURL: fmt.Sprintf("%s/parts/%d", srv.URL, params.Index),
			}, nil
		},
	}

	uploader := NewUploader(api)
	binary := &registry.Binary{PRN: testBinaryPRN, State: registry.BinaryStateUploadable}
	require.NoError(t, uploader.Upload(context.Background(), binary, content))

	assert.NotContains(t, rec.bodies, 1, "valid part must not transfer bytes")
	assert.Contains(t, rec.bodies, 2, "pending part must be re-transferred")
	assert.Contains(t, rec.bodies, 3)
}

func TestUploader_Upload_TransferFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	api := &mockRegistry{
		CreateBinaryPartFunc: func(_ context.Context, _ string, params registry.CreateBinaryPartParams) (*registry.BinaryPart, error) {
			return &registry.BinaryPart{
				Index:              params.Index,
				Size:               params.Size,
				PresignedUploadURL: srv.URL,
			}, nil
		},
	}

	uploader := NewUploader(api)
	binary := &registry.Binary{PRN: testBinaryPRN, State: registry.BinaryStateUploadable}
	err := uploader.Upload(context.Background(), binary, testContent(t, 100))
	assert.ErrorIs(t, err, ErrPartTransfer)
}

func TestDefaultConcurrency(t *testing.T) {
	t.Parallel()

	n := DefaultConcurrency()
	assert.Greater(t, n, 0)
	assert.LessOrEqual(t, n, 16)
}
