package chunker

import (
	"fmt"
	"strings"

	"ytlearn/internal/domain"
)

// Default window parameters used by the ingestion pipeline.
const (
	DefaultChunkSize = 1000
	DefaultOverlap   = 200
)

// WordChunker splits text into fixed-size word windows with overlap.
type WordChunker struct {
	chunkSize int
	overlap   int
}

// NewWordChunker validates the window parameters. The overlap must be
// strictly smaller than the chunk size or the stride becomes non-positive.
func NewWordChunker(chunkSize, overlap int) (*WordChunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d must be positive", domain.ErrInvalidConfiguration, chunkSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap %d must not be negative", domain.ErrInvalidConfiguration, overlap)
	}
	if overlap >= chunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than chunk size %d", domain.ErrInvalidConfiguration, overlap, chunkSize)
	}
	return &WordChunker{chunkSize: chunkSize, overlap: overlap}, nil
}

// Chunk splits text into windows of up to chunkSize whitespace-delimited
// words, each window starting chunkSize-overlap words after the previous
// one. The final window may be shorter. Chunk indices follow source order.
func (c *WordChunker) Chunk(text string) ([]domain.Chunk, error) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil, domain.ErrEmptyTranscript
	}
	stride := c.chunkSize - c.overlap
	var chunks []domain.Chunk
	for i, idx := 0, 0; i < len(words); i, idx = i+stride, idx+1 {
		end := i + c.chunkSize
		if end > len(words) {
			end = len(words)
		}
		window := words[i:end]
		chunks = append(chunks, domain.Chunk{
			Index:     idx,
			Text:      strings.Join(window, " "),
			WordCount: len(window),
		})
		if end == len(words) {
			break
		}
	}
	return chunks, nil
}
