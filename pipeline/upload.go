package pipeline

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/quayside/hoist/registry"
)

// ErrPartTransfer is returned when the byte transfer for a required
// part does not succeed. The whole upload fails; re-running it skips
// parts the registry already marked valid.
var ErrPartTransfer = errors.New("pipeline: part transfer failed")

// DefaultConcurrency is min(2 × available parallelism, 16).
func DefaultConcurrency() int {
	return min(2*runtime.NumCPU(), 16)
}

// Uploader transfers binary content to storage in concurrent chunks.
//
// Chunks whose registry-side state is already valid are skipped, making
// an interrupted upload resumable: aborting leaves valid parts
// registered, and the next invocation transfers only the remainder.
type Uploader struct {
	api         RegistryAPI
	httpClient  *http.Client
	partSize    uint64
	concurrency int
	progress    ProgressFunc
	logger      *slog.Logger
}

// UploaderOption configures an Uploader.
type UploaderOption func(*Uploader)

// WithPartSize sets the chunk size. Bounds are validated at upload time.
func WithPartSize(size uint64) UploaderOption {
	return func(u *Uploader) {
		u.partSize = size
	}
}

// WithConcurrency bounds the number of chunks in flight.
func WithConcurrency(n int) UploaderOption {
	return func(u *Uploader) {
		if n > 0 {
			u.concurrency = n
		}
	}
}

// WithTransferClient sets the HTTP client used for part byte transfers
// to the pre-signed storage endpoints.
func WithTransferClient(hc *http.Client) UploaderOption {
	return func(u *Uploader) {
		u.httpClient = hc
	}
}

// WithUploadProgress sets a callback receiving cumulative byte progress.
func WithUploadProgress(fn ProgressFunc) UploaderOption {
	return func(u *Uploader) {
		u.progress = fn
	}
}

// WithUploadLogger sets the logger.
func WithUploadLogger(logger *slog.Logger) UploaderOption {
	return func(u *Uploader) {
		u.logger = logger
	}
}

// NewUploader creates an Uploader talking to the given registry.
func NewUploader(api RegistryAPI, opts ...UploaderOption) *Uploader {
	u := &Uploader{
		api:         api,
		httpClient:  http.DefaultClient,
		partSize:    DefaultPartSize,
		concurrency: DefaultConcurrency(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// log returns the logger, falling back to a discard logger if nil.
func (u *Uploader) log() *slog.Logger {
	if u.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return u.logger
}

// Upload transfers content for the binary. The buffer is shared
// read-only across chunk workers; completion order across chunks is
// unordered, but each chunk registers its part before transferring
// bytes. Any failed required chunk fails the whole upload.
func (u *Uploader) Upload(ctx context.Context, binary *registry.Binary, content []byte) error {
	chunks, err := PlanChunks(uint64(len(content)), u.partSize)
	if err != nil {
		return err
	}

	existing, err := u.fetchParts(ctx, binary.PRN)
	if err != nil {
		return fmt.Errorf("list binary parts: %w", err)
	}

	u.log().Info("uploading binary",
		"prn", binary.PRN,
		"size", len(content),
		"parts", len(chunks),
		"concurrency", u.concurrency,
	)

	var done atomic.Uint64
	total := uint64(len(content))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(u.concurrency)

	for _, chunk := range chunks {
		if part, ok := existing[chunk.Index]; ok && part.State == registry.PartStateValid {
			// Already transferred and verified; count it without moving bytes.
			u.reportProgress(done.Add(part.Size), total)
			continue
		}

		eg.Go(func() error {
			if err := u.uploadChunk(ctx, binary, content, chunk); err != nil {
				return fmt.Errorf("part %d: %w", chunk.Index, err)
			}
			u.reportProgress(done.Add(chunk.Size), total)
			return nil
		})
	}

	return eg.Wait()
}

// fetchParts collects all registered parts keyed by index, following
// pagination.
func (u *Uploader) fetchParts(ctx context.Context, binaryPRN string) (map[int]registry.BinaryPart, error) {
	parts := make(map[int]registry.BinaryPart)
	var page string
	for {
		batch, next, err := u.api.ListBinaryParts(ctx, binaryPRN, registry.ListParams{Page: page})
		if err != nil {
			return nil, err
		}
		for _, p := range batch {
			parts[p.Index] = p
		}
		if next == "" {
			return parts, nil
		}
		page = next
	}
}

// uploadChunk registers one part and transfers its bytes to the
// pre-signed target. The register-then-transfer sequence is strictly
// ordered within a chunk.
func (u *Uploader) uploadChunk(ctx context.Context, binary *registry.Binary, content []byte, chunk Chunk) error {
	data := content[chunk.Offset : chunk.Offset+chunk.Size]
	sum := sha256.Sum256(data)

	part, err := u.api.CreateBinaryPart(ctx, binary.PRN, registry.CreateBinaryPartParams{
		Index:              chunk.Index,
		Size:               chunk.Size,
		Hash:               hex.EncodeToString(sum[:]),
		ExpectedBinarySize: uint64(len(content)),
	})
	if err != nil {
		return fmt.Errorf("create binary part: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, part.PresignedUploadURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build transfer request: %w", err)
	}
	req.ContentLength = int64(chunk.Size)
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Content-Length", strconv.FormatUint(chunk.Size, 10))
	req.Header.Set("x-amz-checksum-sha256", base64.StdEncoding.EncodeToString(sum[:]))

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("transfer: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrPartTransfer, resp.StatusCode)
	}

	u.log().Debug("part uploaded", "prn", binary.PRN, "index", chunk.Index, "size", chunk.Size)
	return nil
}

// reportProgress sends a progress event if a callback is configured.
func (u *Uploader) reportProgress(bytesDone, bytesTotal uint64) {
	if u.progress == nil {
		return
	}
	u.progress(ProgressEvent{BytesDone: bytesDone, BytesTotal: bytesTotal})
}
