package rowstore

import (
	"bufio"
	"bytes"
	"cmp"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/mtmstats/blobstore"
	"github.com/hupe1980/mtmstats/internal/blockcompress"
	"github.com/hupe1980/mtmstats/internal/hash"
	"github.com/hupe1980/mtmstats/resource"
	"github.com/hupe1980/mtmstats/rows"
	"github.com/hupe1980/mtmstats/sba"
)

// ReadManifest returns the manifest of the table saved under name.
// A missing table yields an error matching blobstore.ErrNotFound.
func ReadManifest(ctx context.Context, store blobstore.Store, name string) (*Manifest, error) {
	data, err := blobstore.ReadAll(ctx, store, blobName(name, manifestBlob))
	if err != nil {
		return nil, err
	}
	m, _, err := decodeManifest(data)
	return m, err
}

// Load reads the table saved under name. The key types must match the
// ones it was saved with.
func Load[A, B cmp.Ordered](ctx context.Context, store blobstore.Store, name string, optFns ...Option) (*rows.Table[A, B], error) {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}

	start := time.Now()
	data, err := blobstore.ReadAll(ctx, store, blobName(name, manifestBlob))
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", name, err)
	}
	m, c, err := decodeManifest(data)
	if err != nil {
		return nil, err
	}

	if ta, tb := fmt.Sprintf("%T", *new(A)), fmt.Sprintf("%T", *new(B)); ta != m.KeyTypeA || tb != m.KeyTypeB {
		return nil, fmt.Errorf("%w: saved key types (%s, %s), requested (%s, %s)",
			ErrIncompatibleFormat, m.KeyTypeA, m.KeyTypeB, ta, tb)
	}
	kind, ok := rows.ParseKind(m.Kind)
	if !ok {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrIncompatibleFormat, m.Kind)
	}
	bt, ok := blockcompress.ParseType(m.Compression)
	if !ok {
		return nil, fmt.Errorf("%w: unknown compression %q", ErrIncompatibleFormat, m.Compression)
	}

	// Both blobs are staged in memory until the rows are decoded.
	staging := m.KeysSize + m.RowsSize
	if err := o.controller.AcquireMemory(ctx, staging); err != nil {
		return nil, fmt.Errorf("reserve %d bytes to load %s: %w", staging, name, err)
	}
	defer o.controller.ReleaseMemory(staging)

	keyData, err := readBlob(ctx, store, blobName(name, keysBlob), o.controller, m.KeysSize, m.KeysCRC)
	if err != nil {
		return nil, err
	}
	var keys keysDoc[A, B]
	if err := c.Unmarshal(keyData, &keys); err != nil {
		return nil, fmt.Errorf("%w: decode keys: %v", ErrIncompatibleFormat, err)
	}
	if len(keys.A) != m.Rows || len(keys.B) != m.BitLength {
		return nil, fmt.Errorf("%w: %d a-keys and %d b-keys for %d rows of %d bits",
			ErrIncompatibleFormat, len(keys.A), len(keys.B), m.Rows, m.BitLength)
	}

	rowData, err := readBlob(ctx, store, blobName(name, rowsBlob), o.controller, m.RowsSize, m.RowsCRC)
	if err != nil {
		return nil, err
	}
	r, err := decodeRows(ctx, blockcompress.NewReader(bytes.NewReader(rowData), bt), kind, m)
	if err != nil {
		return nil, fmt.Errorf("decode rows %s: %w", name, err)
	}

	o.logger.Debug("loaded table",
		"table", name,
		"rows", m.Rows,
		"kind", m.Kind,
		"duration", time.Since(start),
	)
	return &rows.Table[A, B]{SetA: keys.A, SetB: keys.B, Rows: r}, nil
}

// readBlob reads a whole blob and checks it against the manifest.
func readBlob(ctx context.Context, store blobstore.Store, name string, rc *resource.Controller, size int64, crc uint32) ([]byte, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer blob.Close()

	if blob.Size() != size {
		return nil, fmt.Errorf("%w: %s is %d bytes, want %d", ErrChecksumMismatch, name, blob.Size(), size)
	}
	if size == 0 {
		return nil, checkCRC(name, nil, crc)
	}

	body, err := blob.ReadRange(ctx, 0, size)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	defer body.Close()

	data := make([]byte, size)
	if _, err := io.ReadFull(resource.NewRateLimitedReader(ctx, body, rc), data); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, checkCRC(name, data, crc)
}

func checkCRC(name string, data []byte, want uint32) error {
	if err := hash.Verify(data, want); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrChecksumMismatch, name, err)
	}
	return nil
}

// maxRoaringRowBytes bounds the serialized size of one roaring row.
const maxRoaringRowBytes = 1 << 32

func decodeRows(ctx context.Context, r io.Reader, kind rows.Kind, m *Manifest) (*rows.Rows, error) {
	br := bufio.NewReader(r)
	wpr := (m.BitLength + 63) / 64

	var (
		sparse  []sba.Row
		dense   [][]uint64
		bitmaps []*roaring.Bitmap
	)
	switch kind {
	case rows.KindDense:
		dense = make([][]uint64, m.Rows)
	case rows.KindRoaring:
		bitmaps = make([]*roaring.Bitmap, m.Rows)
	default:
		sparse = make([]sba.Row, m.Rows)
	}

	var buf []byte
	for i := range m.Rows {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		switch kind {
		case rows.KindDense:
			buf = grow(buf, 8*wpr)
			if _, err := io.ReadFull(br, buf); err != nil {
				return nil, fmt.Errorf("row %d: %w", i, unexpected(err))
			}
			words := make([]uint64, wpr)
			for k := range words {
				words[k] = binary.LittleEndian.Uint64(buf[8*k:])
			}
			dense[i] = words
		case rows.KindRoaring:
			n, err := binary.ReadUvarint(br)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, unexpected(err))
			}
			if n > maxRoaringRowBytes {
				return nil, fmt.Errorf("%w: row %d claims %d bytes", ErrIncompatibleFormat, i, n)
			}
			buf = grow(buf, int(n))
			if _, err := io.ReadFull(br, buf); err != nil {
				return nil, fmt.Errorf("row %d: %w", i, unexpected(err))
			}
			rb := roaring.New()
			if err := rb.UnmarshalBinary(buf); err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			bitmaps[i] = rb
		default:
			row, err := readSparseRow(br, m.ChunkLength64)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			sparse[i] = row
		}
	}
	if _, err := br.ReadByte(); err == nil {
		return nil, fmt.Errorf("%w: trailing data after %d rows", ErrIncompatibleFormat, m.Rows)
	} else if err != io.EOF {
		return nil, err
	}

	switch kind {
	case rows.KindDense:
		return rows.NewDense(dense, m.BitLength)
	case rows.KindRoaring:
		return rows.NewRoaring(bitmaps, m.BitLength)
	default:
		return rows.NewSparse(sparse, m.ChunkLength64, m.BitLength)
	}
}

// readSparseRow reads one sba row from the stream. The row length is only
// known after its location count, so the row is reassembled and handed to
// sba.Decode.
func readSparseRow(br *bufio.Reader, chunkLength64 int) (sba.Row, error) {
	if chunkLength64 <= 0 {
		return sba.Row{}, sba.ErrInvalidChunkLength
	}
	numLocs, err := binary.ReadUvarint(br)
	if err != nil {
		return sba.Row{}, unexpected(err)
	}

	enc := binary.AppendUvarint(nil, numLocs)
	for range numLocs {
		d, err := binary.ReadUvarint(br)
		if err != nil {
			return sba.Row{}, unexpected(err)
		}
		enc = binary.AppendUvarint(enc, d)
	}

	words := numLocs * uint64(chunkLength64)
	head := len(enc)
	enc = append(enc, make([]byte, 8*words)...)
	if _, err := io.ReadFull(br, enc[head:]); err != nil {
		return sba.Row{}, unexpected(err)
	}

	row, _, err := sba.Decode(enc, chunkLength64)
	return row, err
}

func grow(buf []byte, n int) []byte {
	if cap(buf) < n {
		return make([]byte, n)
	}
	return buf[:n]
}

func unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
