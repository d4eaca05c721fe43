package rowstore

import (
	"fmt"
	"path"

	"github.com/hupe1980/mtmstats/codec"
)

// FormatVersion is the current table format.
const FormatVersion = 1

const (
	manifestBlob = "MANIFEST"
	keysBlob     = "keys"
	rowsBlob     = "rows"
)

var manifestMagic = [4]byte{'M', 'T', 'M', 'S'}

// Manifest describes a saved table.
type Manifest struct {
	FormatVersion int    `json:"format_version"`
	Kind          string `json:"kind"`
	ChunkLength64 int    `json:"chunk_length64"`
	BitLength     int    `json:"bit_length"`
	Rows          int    `json:"rows"`
	KeyTypeA      string `json:"key_type_a"`
	KeyTypeB      string `json:"key_type_b"`
	Compression   string `json:"compression"`
	KeysSize      int64  `json:"keys_size"`
	KeysCRC       uint32 `json:"keys_crc"`
	RowsSize      int64  `json:"rows_size"`
	RowsCRC       uint32 `json:"rows_crc"`
}

type keysDoc[A, B any] struct {
	A []A `json:"a"`
	B []B `json:"b"`
}

func blobName(table, blob string) string {
	return path.Join(table, blob)
}

// encodeManifest prefixes the encoded manifest with the magic and the codec
// name so Load can pick the codec.
func encodeManifest(c codec.Codec, m *Manifest) ([]byte, error) {
	body, err := c.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	name := c.Name()
	if len(name) > 255 {
		return nil, fmt.Errorf("%w: codec name %q too long", ErrInvalidConfig, name)
	}

	out := make([]byte, 0, len(manifestMagic)+1+len(name)+len(body))
	out = append(out, manifestMagic[:]...)
	out = append(out, byte(len(name)))
	out = append(out, name...)
	return append(out, body...), nil
}

func decodeManifest(data []byte) (*Manifest, codec.Codec, error) {
	if len(data) < len(manifestMagic)+1 || [4]byte(data[:4]) != manifestMagic {
		return nil, nil, fmt.Errorf("%w: bad manifest header", ErrIncompatibleFormat)
	}
	n := int(data[4])
	if len(data) < 5+n {
		return nil, nil, fmt.Errorf("%w: truncated manifest header", ErrIncompatibleFormat)
	}
	name := string(data[5 : 5+n])
	c, ok := codec.ByName(name)
	if !ok {
		return nil, nil, fmt.Errorf("%w: unknown codec %q", ErrIncompatibleFormat, name)
	}

	var m Manifest
	if err := c.Unmarshal(data[5+n:], &m); err != nil {
		return nil, nil, fmt.Errorf("%w: decode manifest: %v", ErrIncompatibleFormat, err)
	}
	if m.FormatVersion != FormatVersion {
		return nil, nil, fmt.Errorf("%w: format version %d", ErrIncompatibleFormat, m.FormatVersion)
	}
	return &m, c, nil
}
