package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"ytlearn/internal/chunker"
	"ytlearn/internal/domain"
	"ytlearn/internal/session"
)

// fakeEmbedder maps equal texts to equal vectors so exact-match retrieval is
// predictable, and counts upstream calls.
type fakeEmbedder struct {
	mu    sync.Mutex
	calls int64
	err   error
}

func (f *fakeEmbedder) Name() string { return "fake" }

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	atomic.AddInt64(&f.calls, 1)
	f.mu.Lock()
	err := f.err
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		var sum float32
		for _, b := range []byte(text) {
			sum += float32(b)
		}
		out[i] = []float32{float32(len(text)), sum, float32(len(strings.Fields(text)))}
	}
	return out, nil
}

type fakeGenerator struct {
	mu             sync.Mutex
	summarizeCalls int64
	answerCalls    int64
	lastContext    string
	lastQuestion   string
	err            error
}

func (f *fakeGenerator) Summarize(_ context.Context, contextText string) (string, error) {
	atomic.AddInt64(&f.summarizeCalls, 1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.lastContext = contextText
	return fmt.Sprintf("summary over %d chars", len(contextText)), nil
}

func (f *fakeGenerator) Answer(_ context.Context, question, contextText string) (string, error) {
	atomic.AddInt64(&f.answerCalls, 1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.lastQuestion = question
	f.lastContext = contextText
	return "  answer to " + question + "  ", nil
}

type fakeSource struct {
	transcript string
	fetchCalls int64
	fetchErr   error
}

func (f *fakeSource) VideoID(ref string) (string, error) {
	if !strings.HasPrefix(ref, "yt:") {
		return "", domain.ErrInvalidReference
	}
	return strings.TrimPrefix(ref, "yt:"), nil
}

func (f *fakeSource) Fetch(context.Context, string) (string, error) {
	atomic.AddInt64(&f.fetchCalls, 1)
	if f.fetchErr != nil {
		return "", f.fetchErr
	}
	return f.transcript, nil
}

func testEngine(t *testing.T, src *fakeSource) (*Engine, *fakeEmbedder, *fakeGenerator) {
	t.Helper()
	ch, err := chunker.NewWordChunker(3, 1)
	require.NoError(t, err)
	emb := &fakeEmbedder{}
	gen := &fakeGenerator{}
	eng := NewEngine(ch, emb, gen, src, session.NewStore(0), Options{SummaryTopK: 2, AnswerTopK: 2})
	return eng, emb, gen
}

func TestIngestIsIdempotent(t *testing.T) {
	src := &fakeSource{transcript: "alpha bravo charlie delta echo foxtrot golf"}
	eng, emb, gen := testEngine(t, src)

	s1, created, err := eng.Ingest(context.Background(), "yt:vid00000001")
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, "vid00000001", s1.ID)
	require.Len(t, s1.Chunks, len(s1.Vectors))
	require.Equal(t, len(s1.Chunks), s1.Index.Size())

	s2, created, err := eng.Ingest(context.Background(), "yt:vid00000001")
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, s1.Summary, s2.Summary)

	require.Equal(t, int64(1), atomic.LoadInt64(&src.fetchCalls))
	require.Equal(t, int64(1), atomic.LoadInt64(&emb.calls))
	require.Equal(t, int64(1), atomic.LoadInt64(&gen.summarizeCalls))
}

func TestConcurrentIngestSharesOneBuild(t *testing.T) {
	src := &fakeSource{transcript: "alpha bravo charlie delta echo foxtrot golf"}
	eng, emb, gen := testEngine(t, src)

	var wg sync.WaitGroup
	summaries := make([]string, 10)
	errs := make([]error, len(summaries))
	for i := range summaries {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, _, err := eng.Ingest(context.Background(), "yt:vid00000001")
			if err != nil {
				errs[i] = err
				return
			}
			summaries[i] = s.Summary
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, int64(1), atomic.LoadInt64(&emb.calls))
	require.Equal(t, int64(1), atomic.LoadInt64(&gen.summarizeCalls))
	for _, s := range summaries {
		require.Equal(t, summaries[0], s)
	}
}

func TestIngestInvalidReference(t *testing.T) {
	src := &fakeSource{transcript: "alpha bravo"}
	eng, emb, _ := testEngine(t, src)

	_, _, err := eng.Ingest(context.Background(), "not-a-video")
	require.ErrorIs(t, err, domain.ErrInvalidReference)
	require.Equal(t, int64(0), atomic.LoadInt64(&src.fetchCalls))
	require.Equal(t, int64(0), atomic.LoadInt64(&emb.calls))
}

func TestIngestEmptyTranscriptInstallsNothing(t *testing.T) {
	src := &fakeSource{transcript: "   \n\t "}
	eng, emb, gen := testEngine(t, src)

	_, _, err := eng.Ingest(context.Background(), "yt:vid00000001")
	require.ErrorIs(t, err, domain.ErrEmptyTranscript)
	require.Equal(t, int64(0), atomic.LoadInt64(&emb.calls))
	require.Equal(t, int64(0), atomic.LoadInt64(&gen.summarizeCalls))

	_, err = eng.Ask(context.Background(), "vid00000001", "anything?")
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestGenerationFailureInstallsNothing(t *testing.T) {
	src := &fakeSource{transcript: "alpha bravo charlie delta echo foxtrot golf"}
	eng, _, gen := testEngine(t, src)
	gen.err = fmt.Errorf("%w: quota", domain.ErrGenerationUnavailable)

	_, _, err := eng.Ingest(context.Background(), "yt:vid00000001")
	require.ErrorIs(t, err, domain.ErrGenerationUnavailable)
	_, ok := eng.Session("vid00000001")
	require.False(t, ok)

	// The failure is not cached; a later ingest runs the pipeline again.
	gen.mu.Lock()
	gen.err = nil
	gen.mu.Unlock()
	s, created, err := eng.Ingest(context.Background(), "yt:vid00000001")
	require.NoError(t, err)
	require.True(t, created)
	require.NotEmpty(t, s.Summary)
	require.Equal(t, int64(2), atomic.LoadInt64(&src.fetchCalls))
}

func TestAskUnknownSession(t *testing.T) {
	src := &fakeSource{transcript: "alpha bravo"}
	eng, emb, _ := testEngine(t, src)

	_, err := eng.Ask(context.Background(), "xyz", "who?")
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
	require.Equal(t, int64(0), atomic.LoadInt64(&emb.calls))
}

func TestAskGroundsInNearestChunks(t *testing.T) {
	// chunk size 3, overlap 1: windows are
	// "alpha bravo charlie", "charlie delta echo", "echo foxtrot golf"
	src := &fakeSource{transcript: "alpha bravo charlie delta echo foxtrot golf"}
	eng, _, gen := testEngine(t, src)

	s, _, err := eng.Ingest(context.Background(), "yt:vid00000001")
	require.NoError(t, err)
	require.Len(t, s.Chunks, 3)

	question := "charlie delta echo"
	answer, err := eng.Ask(context.Background(), "vid00000001", question)
	require.NoError(t, err)
	require.Equal(t, "answer to "+question, answer) // whitespace-trimmed

	gen.mu.Lock()
	defer gen.mu.Unlock()
	require.Equal(t, question, gen.lastQuestion)
	lines := strings.Split(gen.lastContext, "\n")
	require.Len(t, lines, 2)
	// most relevant first: the chunk matching the question exactly
	require.Equal(t, "charlie delta echo", lines[0])
}
