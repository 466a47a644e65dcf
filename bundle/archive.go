package bundle

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/cavaliergopher/cpio"
	"github.com/klauspost/compress/zstd"
)

// Archive errors.
var (
	// ErrNoManifest is returned when an archive contains no bundle.json
	// record.
	ErrNoManifest = errors.New("bundle: archive has no manifest record")

	// ErrWriterClosed is returned when a payload is added after Close.
	ErrWriterClosed = errors.New("bundle: writer closed")
)

// Payload is one named payload record read from an archive.
type Payload struct {
	Name string
	Data []byte
}

// Archive is a fully parsed bundle archive.
type Archive struct {
	Manifest *Manifest
	Payloads []Payload
}

// Writer produces a bundle archive. The manifest is written first;
// payloads must then be added in manifest order, one per entry.
type Writer struct {
	zw     *zstd.Encoder
	cw     *cpio.Writer
	closed bool
}

// NewWriter starts an archive on w and writes the manifest record.
func NewWriter(w io.Writer, m *Manifest) (*Writer, error) {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return nil, fmt.Errorf("create zstd writer: %w", err)
	}
	cw := cpio.NewWriter(zw)

	var buf bytes.Buffer
	if err := EncodeManifest(&buf, m); err != nil {
		return nil, err
	}
	if err := writeRecord(cw, ManifestName, buf.Bytes()); err != nil {
		return nil, err
	}
	return &Writer{zw: zw, cw: cw}, nil
}

// AddPayload appends one payload record.
func (w *Writer) AddPayload(name string, data []byte) error {
	if w.closed {
		return ErrWriterClosed
	}
	return writeRecord(w.cw, name, data)
}

// Close writes the trailer and flushes the compressed stream. The
// underlying writer is not closed.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.cw.Close(); err != nil {
		return fmt.Errorf("close cpio stream: %w", err)
	}
	if err := w.zw.Close(); err != nil {
		return fmt.Errorf("close zstd stream: %w", err)
	}
	return nil
}

func writeRecord(cw *cpio.Writer, name string, data []byte) error {
	hdr := &cpio.Header{
		Name: name,
		Mode: 0o644,
		Size: int64(len(data)),
	}
	if err := cw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("write record header %s: %w", name, err)
	}
	if _, err := cw.Write(data); err != nil {
		return fmt.Errorf("write record %s: %w", name, err)
	}
	return nil
}

// Build writes a complete archive: the manifest followed by one payload
// per manifest entry, in entry order, each named by its target.
func Build(w io.Writer, m *Manifest, payloads [][]byte) error {
	if len(payloads) != len(m.Bundle.Manifest) {
		return fmt.Errorf("bundle: %d payloads for %d manifest entries", len(payloads), len(m.Bundle.Manifest))
	}

	bw, err := NewWriter(w, m)
	if err != nil {
		return err
	}
	for i, entry := range m.Bundle.Manifest {
		if err := bw.AddPayload(entry.Target, payloads[i]); err != nil {
			return err
		}
	}
	return bw.Close()
}

// Parse reads a complete archive. The first record named bundle.json is
// decoded as the manifest; every other non-empty record is retained as
// a named payload in stream order.
func Parse(r io.Reader) (*Archive, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("open zstd stream: %w", err)
	}
	defer zr.Close()

	cr := cpio.NewReader(zr)
	archive := &Archive{}

	for {
		hdr, err := cr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record header: %w", err)
		}
		if hdr.Name == "" {
			continue
		}

		data, err := io.ReadAll(cr)
		if err != nil {
			return nil, fmt.Errorf("read record %s: %w", hdr.Name, err)
		}

		if archive.Manifest == nil && hdr.Name == ManifestName {
			m, err := DecodeManifest(bytes.NewReader(data))
			if err != nil {
				return nil, err
			}
			archive.Manifest = m
			continue
		}
		if len(data) == 0 {
			continue
		}
		archive.Payloads = append(archive.Payloads, Payload{Name: hdr.Name, Data: data})
	}

	if archive.Manifest == nil {
		return nil, ErrNoManifest
	}
	return archive, nil
}
