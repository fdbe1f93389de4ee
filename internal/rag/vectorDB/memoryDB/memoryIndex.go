package memoryDB

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/clearpathhq/supportbot/internal/config"
	"github.com/clearpathhq/supportbot/internal/domain/commonModels"
	"github.com/clearpathhq/supportbot/internal/domain/queryModel"
	"github.com/clearpathhq/supportbot/internal/rag/vectorDB"
	"github.com/clearpathhq/supportbot/pkg/logger_i"
)

// In-process flat index. Writes rebuild an immutable snapshot under the
// mutex and publish it with one atomic pointer store, reads load the
// pointer and scan without any lock. A search running across a rebuild
// sees the old snapshot or the new one, never a mix of both.

type entry struct {
	chunk  commonModels.DocChunk
	vector []float32
}

type snapshot struct {
	entries []entry
}

type Store struct {
	mu     sync.Mutex
	docs   map[string][]entry
	order  []string //document insertion order, keeps rebuilds stable
	active atomic.Pointer[snapshot]
	dims   int
	logger *logger_i.Logger
}

func NewStore() *Store {
	return &Store{
		docs:   make(map[string][]entry),
		dims:   config.EmbeddingDimensions,
		logger: logger_i.NewLogger("memory_index"),
	}
}

// Initialize publishes an empty snapshot when nothing has been indexed
// yet, marking the store ready to serve. Called once bootstrap ingestion
// finishes so an empty docs directory still yields a working (empty)
// index instead of ErrNotReady forever.
func (s *Store) Initialize() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active.Load() == nil {
		s.active.Store(&snapshot{})
		s.logger.Info("index initialized empty")
	}
}

func (s *Store) Search(ctx context.Context, queryVector []float32, limit int) ([]queryModel.ScoredChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap := s.active.Load()
	if snap == nil {
		return nil, vectorDB.ErrNotReady
	}
	if len(queryVector) != s.dims {
		return nil, fmt.Errorf("query vector has %d dimensions, index expects %d", len(queryVector), s.dims)
	}
	if limit <= 0 {
		limit = config.TopK
	}

	scored := make([]queryModel.ScoredChunk, 0, len(snap.entries))
	for _, e := range snap.entries {
		scored = append(scored, queryModel.ScoredChunk{
			Chunk: e.chunk,
			Score: dot(e.vector, queryVector),
		})
	}
	//stable sort keeps insertion order for equal scores
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

func (s *Store) ReplaceDocument(ctx context.Context, doc commonModels.Document, chunks []commonModels.DocChunk, vectors [][]float32) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}
	entries := make([]entry, len(chunks))
	for i := range chunks {
		if len(vectors[i]) != s.dims {
			return fmt.Errorf("chunk %d vector has %d dimensions, index expects %d", i, len(vectors[i]), s.dims)
		}
		entries[i] = entry{chunk: chunks[i], vector: vectors[i]}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, seen := s.docs[doc.Name]; !seen {
		s.order = append(s.order, doc.Name)
	}
	s.docs[doc.Name] = entries
	s.publishLocked()
	s.logger.Info("document indexed", "doc", doc.Name, "chunks", len(entries))
	return nil
}

func (s *Store) RemoveDocument(ctx context.Context, docName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, seen := s.docs[docName]; !seen {
		return nil
	}
	delete(s.docs, docName)
	for i, name := range s.order {
		if name == docName {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.publishLocked()
	s.logger.Info("document removed", "doc", docName)
	return nil
}

func (s *Store) ChunkCount(ctx context.Context) (int, error) {
	snap := s.active.Load()
	if snap == nil {
		return 0, vectorDB.ErrNotReady
	}
	return len(snap.entries), nil
}

func (s *Store) publishLocked() {
	snap := &snapshot{}
	for _, name := range s.order {
		snap.entries = append(snap.entries, s.docs[name]...)
	}
	s.active.Store(snap)
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
