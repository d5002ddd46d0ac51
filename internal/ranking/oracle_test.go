package ranking

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WikiAnswers/internal/ports"
)

type fakeCompletion struct {
	reply string
	err   error
	calls int
	last  ports.CompletionRequest
}

func (f *fakeCompletion) Complete(_ context.Context, req ports.CompletionRequest) (string, error) {
	f.calls++
	f.last = req
	return f.reply, f.err
}

func TestOracleRankMapsURLsBack(t *testing.T) {
	t.Parallel()

	candidates := candidatesFromTitles("File:A.jpg", "File:B.jpg", "File:C.jpg", "File:D.jpg")
	oracle := &fakeCompletion{
		reply: `Here you go: {"top_urls": ["https://img.example/File:C.jpg", "https://img.example/File:A.jpg", "https://invented.example/nope.jpg", "https://img.example/File:B.jpg", "https://img.example/File:D.jpg"]}`,
	}

	strategy := NewOracleStrategy(oracle, "test-model", 0.5, 200)
	ranked, err := strategy.Rank(context.Background(), "anything", candidates)
	require.NoError(t, err)

	// Invented URLs are discarded; at most three survivors, best first.
	require.Len(t, ranked, 3)
	assert.Equal(t, "File:C.jpg", ranked[0].Identifier)
	assert.Equal(t, "File:A.jpg", ranked[1].Identifier)
	assert.Equal(t, "File:B.jpg", ranked[2].Identifier)
	assert.Greater(t, ranked[0].Score, ranked[1].Score)
	assert.Greater(t, ranked[1].Score, ranked[2].Score)

	assert.Equal(t, 1, oracle.calls)
	assert.Equal(t, "test-model", oracle.last.Model)
}

func TestOracleRankEmptyCandidates(t *testing.T) {
	t.Parallel()

	oracle := &fakeCompletion{}
	strategy := NewOracleStrategy(oracle, "test-model", 0.5, 200)

	ranked, err := strategy.Rank(context.Background(), "anything", nil)
	require.NoError(t, err)
	assert.Empty(t, ranked)
	assert.Zero(t, oracle.calls, "no oracle call without candidates")
}

func TestOracleRankMalformedReply(t *testing.T) {
	t.Parallel()

	strategy := NewOracleStrategy(&fakeCompletion{reply: "sorry, no JSON here"}, "m", 0.5, 200)
	_, err := strategy.Rank(context.Background(), "q", candidatesFromTitles("File:A.jpg"))
	require.Error(t, err)
}

func TestOracleRankCompletionError(t *testing.T) {
	t.Parallel()

	strategy := NewOracleStrategy(&fakeCompletion{err: errors.New("oracle down")}, "m", 0.5, 200)
	_, err := strategy.Rank(context.Background(), "q", candidatesFromTitles("File:A.jpg"))
	require.Error(t, err)
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.Register(NewFuzzyStrategy())

	strategy, err := registry.Resolve("fuzzy")
	require.NoError(t, err)
	assert.Equal(t, "fuzzy", strategy.Name())

	_, err = registry.Resolve("nonsense")
	require.Error(t, err)
}
