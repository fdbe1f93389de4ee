package hashEmbedding

import (
	"context"
	"math"
	"reflect"
	"testing"

	"github.com/clearpathhq/supportbot/internal/config"
)

func TestGetEmbedding_Deterministic(t *testing.T) {
	e := GetHashEmbedder()
	ctx := context.Background()

	first, err := e.GetEmbedding(ctx, "How do I configure webhook retries?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := e.GetEmbedding(ctx, "How do I configure webhook retries?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("same text produced different vectors")
	}
}

func TestGetEmbedding_Shape(t *testing.T) {
	e := GetHashEmbedder()

	vec, err := e.GetEmbedding(context.Background(), "billing invoices are generated monthly")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != config.EmbeddingDimensions {
		t.Errorf("dimension got %d, want %d", len(vec), config.EmbeddingDimensions)
	}
	if e.Dimensions() != config.EmbeddingDimensions {
		t.Errorf("Dimensions() got %d, want %d", e.Dimensions(), config.EmbeddingDimensions)
	}
	if e.ModelVersion() != config.EmbeddingModelVersion {
		t.Errorf("ModelVersion() got %s, want %s", e.ModelVersion(), config.EmbeddingModelVersion)
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if math.Abs(norm-1) > 1e-4 {
		t.Errorf("vector is not unit length, squared norm %f", norm)
	}
}

func TestGetEmbedding_NoTokens(t *testing.T) {
	e := GetHashEmbedder()

	for _, text := range []string{"", "   ", "!!! ??? ..."} {
		vec, err := e.GetEmbedding(context.Background(), text)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", text, err)
		}
		for i, v := range vec {
			if v != 0 {
				t.Errorf("text %q: expected zero vector, bucket %d is %f", text, i, v)
				break
			}
		}
	}
}

func TestGetEmbedding_SimilarTextScoresHigher(t *testing.T) {
	e := GetHashEmbedder()
	ctx := context.Background()

	a, _ := e.GetEmbedding(ctx, "billing invoice payment due date")
	b, _ := e.GetEmbedding(ctx, "billing invoice refund window")
	c, _ := e.GetEmbedding(ctx, "zebra quantum telescope harmonics")

	related := dot(a, b)
	unrelated := dot(a, c)
	if related <= unrelated {
		t.Errorf("shared-vocabulary pair scored %f, disjoint pair %f", related, unrelated)
	}
}

func TestBatchEmbedding_MatchesSingle(t *testing.T) {
	e := GetHashEmbedder()
	ctx := context.Background()
	chunks := []string{
		"Exports run nightly at 2am UTC.",
		"Seats are billed upfront for the month.",
	}

	batch, err := e.BatchEmbedding(ctx, chunks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch) != len(chunks) {
		t.Fatalf("batch size got %d, want %d", len(batch), len(chunks))
	}
	for i, chunk := range chunks {
		single, _ := e.GetEmbedding(ctx, chunk)
		if !reflect.DeepEqual(batch[i], single) {
			t.Errorf("chunk %d: batch vector differs from single vector", i)
		}
	}
}

func TestBatchEmbedding_CancelledContext(t *testing.T) {
	e := GetHashEmbedder()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := e.BatchEmbedding(ctx, []string{"anything"}); err == nil {
		t.Errorf("expected context error, got nil")
	}
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
