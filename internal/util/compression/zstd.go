// Package compression holds the codecs used for stored post bodies.
package compression

import (
	"sync"

	"github.com/klauspost/compress/zstd"
)

type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

var (
	zstdOnce    sync.Once
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
	zstdErr     error
)

// ZstdCompressor shares one encoder and decoder across callers.
// EncodeAll and DecodeAll are safe for concurrent use.
type ZstdCompressor struct{}

func initZstd() {
	zstdEncoder, zstdErr = zstd.NewWriter(nil)
	if zstdErr != nil {
		return
	}
	zstdDecoder, zstdErr = zstd.NewReader(nil)
}

func (z ZstdCompressor) Compress(data []byte) ([]byte, error) {
	zstdOnce.Do(initZstd)
	if zstdErr != nil {
		return nil, zstdErr
	}
	return zstdEncoder.EncodeAll(data, nil), nil
}

func (z ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	zstdOnce.Do(initZstd)
	if zstdErr != nil {
		return nil, zstdErr
	}
	if len(data) == 0 {
		return []byte{}, nil
	}
	return zstdDecoder.DecodeAll(data, nil)
}
