package h5

import "fmt"

const DefaultChunkSize = 4096

// Compression selects the deflate level and the chunk size, in rows, of
// every extendible dataset.
type Compression struct {
	Level     int
	ChunkSize uint
}

func NewCompression(level int, chunkSize int) (Compression, error) {
	if level < 0 || level > 9 {
		return Compression{}, fmt.Errorf("invalid deflate level: %d", level)
	}
	if chunkSize <= 0 {
		return Compression{}, fmt.Errorf("invalid chunk size: %d", chunkSize)
	}
	return Compression{Level: level, ChunkSize: uint(chunkSize)}, nil
}

func (c Compression) chunkRows() uint {
	if c.ChunkSize == 0 {
		return DefaultChunkSize
	}
	return c.ChunkSize
}

func (c Compression) String() string {
	return fmt.Sprintf("deflate %d, chunk %d", c.Level, c.chunkRows())
}
