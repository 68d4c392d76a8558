package domain

import "context"

// Chunk is an ordered window of transcript words used as the unit of retrieval.
type Chunk struct {
	Index     int
	Text      string
	WordCount int
}

// SearchResult is a retrieved chunk together with its squared Euclidean
// distance to the query vector (smaller is closer).
type SearchResult struct {
	Chunk    Chunk
	Distance float64
}

// Chunker splits a transcript into overlapping word windows.
type Chunker interface {
	Chunk(text string) ([]Chunk, error)
}

// Embedder converts a batch of texts into fixed-dimension vectors.
// The i-th vector corresponds to the i-th input text and the dimension is
// constant for the lifetime of the process.
type Embedder interface {
	Name() string
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces natural-language text grounded in the supplied context.
type Generator interface {
	Summarize(ctx context.Context, context string) (string, error)
	Answer(ctx context.Context, question, context string) (string, error)
}

// TranscriptSource resolves an opaque locator to a session identifier and
// acquires the plain-text transcript for it.
type TranscriptSource interface {
	VideoID(ref string) (string, error)
	Fetch(ctx context.Context, videoID string) (string, error)
}
