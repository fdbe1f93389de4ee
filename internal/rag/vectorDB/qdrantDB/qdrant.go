package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/clearpathhq/supportbot/internal/config"
	"github.com/clearpathhq/supportbot/internal/domain/commonModels"
	"github.com/clearpathhq/supportbot/internal/domain/queryModel"
	"github.com/clearpathhq/supportbot/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/status"
)

// Remote vector backend for corpora that outgrow the in-process index.
// Serves the same SearchStore contract, the retriever never knows which
// backend it talks to.

var logger *logger_i.Logger
var instance *Store
var once sync.Once

var dimension = uint64(config.EmbeddingDimensions)

type Store struct {
	client     *qdrant.Client
	collection string
}

func GetQdrantStore(ctx context.Context) *Store {
	once.Do(func() {
		logger = logger_i.NewLogger("qdrant")
		client := newClient(ctx)
		if client != nil {
			instance = &Store{client: client, collection: config.QdrantCollection}
			go closeOnDone(ctx, client)
		}
	})
	return instance
}

func newClient(ctx context.Context) *qdrant.Client {
	host := os.Getenv("QDRANT_HOST")
	port, er := strconv.Atoi(os.Getenv("QDRANT_PORT"))
	if host == "" || er != nil {
		host = config.QdrantHost
		port = config.QdrantGrpcPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		UseTLS: config.QdrantUseTLS,
		GrpcOptions: []grpc.DialOption{
			grpc.WithKeepaliveParams(keepalive.ClientParameters{
				Time:    config.QdrantKeepAliveTimeout,
				Timeout: config.QdrantConnectionTimeout,
			}),
		},
	})
	if err != nil {
		logger.Error("could not instantiate qdrant client", "error", err)
		return nil
	}

	if err := ensureCollection(ctx, client, config.QdrantCollection); err != nil {
		logger.Error("could not ensure collection", "collection", config.QdrantCollection, "error", err)
		return nil
	}
	return client
}

func closeOnDone(ctx context.Context, client *qdrant.Client) {
	<-ctx.Done()
	logger.Info("shutting down qdrant client")
	if err := client.Close(); err != nil {
		logger.Error("could not close qdrant client", "error", err)
	}
}

func (s *Store) Search(ctx context.Context, queryVector []float32, limit int) ([]queryModel.ScoredChunk, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	if limit <= 0 {
		limit = config.TopK
	}

	result, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(queryVector...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		log.Error("qdrant query failed", "error", err)
		return nil, err
	}

	scored := make([]queryModel.ScoredChunk, 0, len(result))
	for _, hit := range result {
		scored = append(scored, queryModel.ScoredChunk{
			Chunk: chunkFromPayload(hit.Payload),
			Score: hit.Score,
		})
	}
	return scored, nil
}

func (s *Store) ReplaceDocument(ctx context.Context, doc commonModels.Document, chunks []commonModels.DocChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}
	//drop the previous chunk set first so a re-ingest never leaves
	//stale points behind
	if err := s.RemoveDocument(ctx, doc.Name); err != nil {
		return err
	}

	points := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(chunk.ChunkId),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"content":         chunk.Chunk,
				"page_num":        chunk.PageNum,
				"source_doc_id":   chunk.Doc.Id,
				"doc_name":        chunk.Doc.Name,
				"content_type":    string(chunk.Doc.ContentType),
				"chunk_order":     chunk.Ordinal,
				"chunk_id":        chunk.ChunkId,
				"embedding_model": chunk.EmbeddingModel,
				"ingested_at":     chunk.Doc.LastIngestTimestamp.Unix(),
			}),
		}
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil && retryable(err) {
		logger.Warn("qdrant upsert throttled, retrying once", "doc", doc.Name)
		time.Sleep(5 * time.Second)
		_, err = s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: s.collection,
			Points:         points,
			Wait:           qdrant.PtrOf(true),
		})
	}
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

func (s *Store) RemoveDocument(ctx context.Context, docName string) error {
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch("doc_name", docName)},
		}),
		Wait: qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant delete failed: %w", err)
	}
	return nil
}

func (s *Store) ChunkCount(ctx context.Context) (int, error) {
	count, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.collection,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

func chunkFromPayload(payload map[string]*qdrant.Value) commonModels.DocChunk {
	return commonModels.DocChunk{
		Doc: commonModels.Document{
			Id:                  payload["source_doc_id"].GetStringValue(),
			Name:                payload["doc_name"].GetStringValue(),
			ContentType:         commonModels.DocType(payload["content_type"].GetStringValue()),
			LastIngestTimestamp: time.Unix(payload["ingested_at"].GetIntegerValue(), 0),
		},
		ChunkId:        payload["chunk_id"].GetStringValue(),
		Chunk:          payload["content"].GetStringValue(),
		PageNum:        int(payload["page_num"].GetIntegerValue()),
		Ordinal:        int(payload["chunk_order"].GetIntegerValue()),
		EmbeddingModel: payload["embedding_model"].GetStringValue(),
	}
}

// retryable classifies transient grpc failures worth one more attempt.
func retryable(err error) bool {
	if s, ok := status.FromError(err); ok {
		return s.Code() == codes.ResourceExhausted || s.Code() == codes.Unavailable
	}
	return false
}

func ensureCollection(ctx context.Context, client *qdrant.Client, collectionName string) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}

	exists, err := client.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	return client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
}
