package pipeline

import (
	"errors"
	"fmt"

	"github.com/quayside/hoist/registry"
)

// Part size bounds imposed by the storage backend's multipart limits.
const (
	// DefaultPartSize is 5 MiB.
	DefaultPartSize uint64 = 5 * 1024 * 1024

	// MinPartSize matches the storage backend's multipart minimum.
	MinPartSize uint64 = 5 * 1024 * 1024

	// MaxPartSize matches the storage backend's multipart maximum.
	MaxPartSize uint64 = 50_000_000_000
)

// Chunk planning errors.
var (
	// ErrPartSizeOutOfRange is returned for part sizes outside
	// [MinPartSize, MaxPartSize].
	ErrPartSizeOutOfRange = errors.New("pipeline: part size out of range")

	// ErrTooManyParts is returned when the content would need more than
	// the registry's maximum part count.
	ErrTooManyParts = errors.New("pipeline: too many parts")
)

// Chunk is one planned slice of a content buffer. Index is 1-based.
type Chunk struct {
	Index  int
	Offset uint64
	Size   uint64
}

// PlanChunks divides a buffer of the given size into partSize-sized
// chunks. All chunks are exactly partSize except the last, which is the
// remainder in (0, partSize]. A zero size yields no chunks.
func PlanChunks(size, partSize uint64) ([]Chunk, error) {
	if partSize < MinPartSize || partSize > MaxPartSize {
		return nil, fmt.Errorf("%w: %d not in [%d, %d]", ErrPartSizeOutOfRange, partSize, MinPartSize, MaxPartSize)
	}
	if size == 0 {
		return nil, nil
	}

	count := (size + partSize - 1) / partSize
	if count > registry.MaxPartIndex {
		return nil, fmt.Errorf("%w: %d parts exceeds maximum %d", ErrTooManyParts, count, registry.MaxPartIndex)
	}

	chunks := make([]Chunk, 0, count)
	for i := uint64(0); i < count; i++ {
		offset := i * partSize
		length := partSize
		if offset+length > size {
			length = size - offset
		}
		chunks = append(chunks, Chunk{
			Index:  int(i + 1),
			Offset: offset,
			Size:   length,
		})
	}
	return chunks, nil
}
