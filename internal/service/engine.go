package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ytlearn/internal/domain"
	"ytlearn/internal/session"
	"ytlearn/internal/vectorindex"
)

// Engine wires the chunker, the external embedding and generation gateways, the
// transcript source and the session store into the two operations the
// service exposes: ingest a video and answer questions about it.
type Engine struct {
	chunker     domain.Chunker
	embedder    domain.Embedder
	generator   domain.Generator
	source      domain.TranscriptSource
	sessions    *session.Store
	summaryTopK int
	answerTopK  int
	logger      *log.Logger
}

// Options tunes retrieval depth and logging.
type Options struct {
	SummaryTopK int // chunks fed to the summary, ranked by centroid distance
	AnswerTopK  int // chunks fed to an answer, ranked by query distance
	Logger      *log.Logger
}

// NewEngine assembles an engine around the given collaborators.
func NewEngine(chunker domain.Chunker, embedder domain.Embedder, generator domain.Generator, source domain.TranscriptSource, sessions *session.Store, opts Options) *Engine {
	if opts.SummaryTopK <= 0 {
		opts.SummaryTopK = 5
	}
	if opts.AnswerTopK <= 0 {
		opts.AnswerTopK = 3
	}
	if opts.Logger == nil {
		opts.Logger = log.New(log.Writer(), "[ENGINE] ", log.LstdFlags)
	}
	return &Engine{
		chunker:     chunker,
		embedder:    embedder,
		generator:   generator,
		source:      source,
		sessions:    sessions,
		summaryTopK: opts.SummaryTopK,
		answerTopK:  opts.AnswerTopK,
		logger:      opts.Logger,
	}
}

// Ingest resolves ref to a session identifier, acquires the transcript and
// builds a session for it. Repeated ingestion of the same identifier returns
// the cached session without touching the transcript source or either
// gateway; the boolean reports whether this call built the session.
func (e *Engine) Ingest(ctx context.Context, ref string) (*session.Session, bool, error) {
	id, err := e.source.VideoID(ref)
	if err != nil {
		return nil, false, err
	}
	return e.ingest(ctx, id, func(ctx context.Context) (string, error) {
		return e.source.Fetch(ctx, id)
	})
}

// IngestTranscript builds a session from an already-acquired transcript,
// with the same idempotence guarantee as Ingest.
func (e *Engine) IngestTranscript(ctx context.Context, id, transcript string) (*session.Session, bool, error) {
	return e.ingest(ctx, id, func(context.Context) (string, error) {
		return transcript, nil
	})
}

func (e *Engine) ingest(ctx context.Context, id string, acquire func(context.Context) (string, error)) (*session.Session, bool, error) {
	sess, created, err := e.sessions.GetOrCreate(id, func() (*session.Session, error) {
		transcript, err := acquire(ctx)
		if err != nil {
			return nil, err
		}
		return e.build(ctx, id, transcript)
	})
	if err != nil {
		return nil, false, err
	}
	if created {
		e.logger.Printf("ingested session %s: %d chunks", id, len(sess.Chunks))
	}
	return sess, created, nil
}

// build runs the one-time pipeline: chunk, embed in one batch, index, pick
// the centroid context, summarize. Any failure leaves the store untouched,
// so a visible session is always fully formed.
func (e *Engine) build(ctx context.Context, id, transcript string) (*session.Session, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, domain.ErrEmptyTranscript
	}
	chunks, err := e.chunker.Chunk(transcript)
	if err != nil {
		return nil, err
	}
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	vectors, err := e.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: %d vectors for %d chunks", domain.ErrEmbeddingUnavailable, len(vectors), len(chunks))
	}
	index, err := vectorindex.Build(vectors)
	if err != nil {
		return nil, err
	}
	hits, err := index.Representative(e.summaryTopK)
	if err != nil {
		return nil, err
	}
	summary, err := e.generator.Summarize(ctx, joinHits(chunks, hits))
	if err != nil {
		return nil, err
	}
	return &session.Session{
		ID:      id,
		Chunks:  chunks,
		Vectors: vectors,
		Index:   index,
		Summary: summary,
	}, nil
}

// Ask answers question using only the stored session's most relevant
// chunks. The session must have been ingested first.
func (e *Engine) Ask(ctx context.Context, id, question string) (string, error) {
	sess, ok := e.sessions.Get(id)
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	vectors, err := e.embedder.EmbedBatch(ctx, []string{question})
	if err != nil {
		return "", err
	}
	if len(vectors) != 1 {
		return "", fmt.Errorf("%w: %d vectors for one question", domain.ErrEmbeddingUnavailable, len(vectors))
	}
	hits, err := sess.Index.Search(vectors[0], e.answerTopK)
	if err != nil {
		return "", err
	}
	answer, err := e.generator.Answer(ctx, question, joinHits(sess.Chunks, hits))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

// Session returns the stored session for id, if any.
func (e *Engine) Session(id string) (*session.Session, bool) {
	return e.sessions.Get(id)
}

// joinHits concatenates the hit chunks' text in hit order, most relevant
// first.
func joinHits(chunks []domain.Chunk, hits []vectorindex.Hit) string {
	parts := make([]string, len(hits))
	for i, h := range hits {
		parts[i] = chunks[h.Index].Text
	}
	return strings.Join(parts, "\n")
}
