package blockcompress

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Type defines the compression algorithm used for a stream.
type Type uint8

const (
	// None stores every block raw.
	None Type = 0
	// LZ4 is fast block compression.
	LZ4 Type = 1
	// ZSTD has a better ratio at a higher CPU cost.
	ZSTD Type = 2
)

// String returns the stable name of the type.
func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case ZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("Type(%d)", t)
	}
}

// ParseType returns the Type for a name produced by String.
func ParseType(s string) (Type, bool) {
	switch s {
	case "none", "":
		return None, true
	case "lz4":
		return LZ4, true
	case "zstd":
		return ZSTD, true
	default:
		return 0, false
	}
}

// DefaultBlockSize is the uncompressed size of a full block.
const DefaultBlockSize = 1 << 20

const headerSize = 9

const (
	flagRaw        = 0
	flagCompressed = 1
)

// ErrCorrupt is returned for malformed block streams.
var ErrCorrupt = errors.New("blockcompress: corrupt block")

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	return dec
}

func compress(t Type, data []byte) ([]byte, error) {
	switch t {
	case LZ4:
		dst := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, dst, nil)
		if err != nil {
			return nil, err
		}
		// n == 0 means incompressible.
		return dst[:n], nil
	case ZSTD:
		enc := getZstdEncoder()
		defer zstdEncoderPool.Put(enc)
		return enc.EncodeAll(data, nil), nil
	default:
		return nil, nil
	}
}

func decompress(t Type, src []byte, size int) ([]byte, error) {
	switch t {
	case LZ4:
		dst := make([]byte, size)
		n, err := lz4.UncompressBlock(src, dst)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if n != size {
			return nil, fmt.Errorf("%w: lz4 size %d, want %d", ErrCorrupt, n, size)
		}
		return dst, nil
	case ZSTD:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)
		out, err := dec.DecodeAll(src, make([]byte, 0, size))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if len(out) != size {
			return nil, fmt.Errorf("%w: zstd size %d, want %d", ErrCorrupt, len(out), size)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: compressed block in %s stream", ErrCorrupt, t)
	}
}

// Writer compresses everything written to it into blocks on w.
// Close must be called to flush the last block; it does not close w.
type Writer struct {
	w         io.Writer
	typ       Type
	blockSize int
	buf       []byte
	written   int64
	err       error
}

// NewWriter creates a Writer. A blockSize <= 0 uses DefaultBlockSize.
func NewWriter(w io.Writer, t Type, blockSize int) *Writer {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &Writer{
		w:         w,
		typ:       t,
		blockSize: blockSize,
		buf:       make([]byte, 0, blockSize),
	}
}

// Write buffers p, flushing full blocks.
func (bw *Writer) Write(p []byte) (int, error) {
	if bw.err != nil {
		return 0, bw.err
	}
	total := 0
	for len(p) > 0 {
		n := min(bw.blockSize-len(bw.buf), len(p))
		bw.buf = append(bw.buf, p[:n]...)
		total += n
		p = p[n:]
		if len(bw.buf) == bw.blockSize {
			if err := bw.flush(); err != nil {
				return total, err
			}
		}
	}
	return total, nil
}

func (bw *Writer) flush() error {
	if len(bw.buf) == 0 {
		return nil
	}

	flag := byte(flagRaw)
	payload := bw.buf
	if bw.typ != None {
		c, err := compress(bw.typ, bw.buf)
		if err != nil {
			bw.err = err
			return err
		}
		if len(c) > 0 && len(c)*10 < len(bw.buf)*9 {
			flag = flagCompressed
			payload = c
		}
	}

	var hdr [headerSize]byte
	binary.LittleEndian.PutUint32(hdr[0:], uint32(len(bw.buf)))
	binary.LittleEndian.PutUint32(hdr[4:], uint32(len(payload)))
	hdr[8] = flag

	if _, err := bw.w.Write(hdr[:]); err != nil {
		bw.err = err
		return err
	}
	if _, err := bw.w.Write(payload); err != nil {
		bw.err = err
		return err
	}
	bw.written += int64(headerSize + len(payload))
	bw.buf = bw.buf[:0]
	return nil
}

// Close flushes the last partial block.
func (bw *Writer) Close() error {
	if bw.err != nil {
		return bw.err
	}
	return bw.flush()
}

// BytesWritten returns the number of framed bytes written to w.
func (bw *Writer) BytesWritten() int64 {
	return bw.written
}

// Reader decodes a block stream.
type Reader struct {
	r     *bufio.Reader
	typ   Type
	block []byte
	err   error
}

// NewReader creates a Reader for a stream written with type t.
func NewReader(r io.Reader, t Type) *Reader {
	return &Reader{r: bufio.NewReader(r), typ: t}
}

// Read implements io.Reader.
func (br *Reader) Read(p []byte) (int, error) {
	for len(br.block) == 0 {
		if br.err != nil {
			return 0, br.err
		}
		br.block, br.err = br.next()
	}
	n := copy(p, br.block)
	br.block = br.block[n:]
	return n, nil
}

func (br *Reader) next() ([]byte, error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(br.r, hdr[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("%w: truncated header", ErrCorrupt)
		}
		return nil, err
	}

	size := int(binary.LittleEndian.Uint32(hdr[0:]))
	stored := int(binary.LittleEndian.Uint32(hdr[4:]))

	payload := make([]byte, stored)
	if _, err := io.ReadFull(br.r, payload); err != nil {
		return nil, fmt.Errorf("%w: truncated block: %v", ErrCorrupt, err)
	}

	switch hdr[8] {
	case flagRaw:
		if stored != size {
			return nil, fmt.Errorf("%w: raw block size %d, want %d", ErrCorrupt, stored, size)
		}
		return payload, nil
	case flagCompressed:
		return decompress(br.typ, payload, size)
	default:
		return nil, fmt.Errorf("%w: unknown flag %d", ErrCorrupt, hdr[8])
	}
}

// Encode frames data in one call.
func Encode(data []byte, t Type, blockSize int) ([]byte, error) {
	var out bytes.Buffer
	w := NewWriter(&out, t, blockSize)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// Decode reverses Encode.
func Decode(data []byte, t Type) ([]byte, error) {
	return io.ReadAll(NewReader(bytes.NewReader(data), t))
}
