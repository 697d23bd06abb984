package middleware

import (
	"encoding/binary"
	"errors"

	"github.com/pierrec/lz4/v4"
)

// lz4Compressor adapts pierrec/lz4 to gocql.Compressor, matching the LZ4
// wire compression spec.md §4.H calls for. Cassandra's native protocol
// does not use the pierrec "frame" format (its own magic number and
// block descriptors); a compressed frame body is the raw LZ4 block
// format prefixed with a 4-byte big-endian uncompressed length, so this
// talks to lz4's block API directly rather than NewWriter/NewReader.
type lz4Compressor struct{}

func (lz4Compressor) Name() string { return "lz4" }

func (lz4Compressor) Encode(data []byte) ([]byte, error) {
	buf := make([]byte, 4+lz4.CompressBlockBound(len(data)))
	binary.BigEndian.PutUint32(buf[:4], uint32(len(data)))

	n, err := lz4.CompressBlock(data, buf[4:], nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, errors.New("lz4: data not compressible")
	}
	return buf[:4+n], nil
}

func (lz4Compressor) Decode(data []byte) ([]byte, error) {
	if len(data) < 4 {
		return nil, errors.New("lz4: frame too short for length prefix")
	}
	uncompressedLen := binary.BigEndian.Uint32(data[:4])
	if uncompressedLen == 0 {
		return nil, nil
	}

	out := make([]byte, uncompressedLen)
	if _, err := lz4.UncompressBlock(data[4:], out); err != nil {
		return nil, err
	}
	return out, nil
}
