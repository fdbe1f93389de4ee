// @title           ClearPath Support RAG API
// @version         1.0
// @description     Customer support assistant over the ClearPath documentation: retrieval-augmented queries, conversations, and document ingestion.
// @termsOfService  http://swagger.io/terms/

// @contact.name    ClearPath Platform Team
// @contact.url
// @contact.email   platform@clearpathhq.dev

// @host      localhost:8000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/clearpathhq/supportbot/internal/adapter/utils"
	"github.com/clearpathhq/supportbot/internal/config"
	"github.com/clearpathhq/supportbot/internal/customHttpClient"
	"github.com/clearpathhq/supportbot/internal/data/store"
	"github.com/clearpathhq/supportbot/internal/domain/chatModel"
	jobmodel "github.com/clearpathhq/supportbot/internal/domain/jobModel"
	"github.com/clearpathhq/supportbot/internal/handlers"
	"github.com/clearpathhq/supportbot/internal/job"
	"github.com/clearpathhq/supportbot/internal/rag"
	"github.com/clearpathhq/supportbot/internal/rag/embedding/hashEmbedding"
	"github.com/clearpathhq/supportbot/internal/rag/ingest"
	"github.com/clearpathhq/supportbot/internal/rag/llm"
	"github.com/clearpathhq/supportbot/internal/rag/llm/gemini"
	"github.com/clearpathhq/supportbot/internal/rag/llm/groq"
	"github.com/clearpathhq/supportbot/internal/rag/vectorDB"
	"github.com/clearpathhq/supportbot/internal/rag/vectorDB/memoryDB"
	"github.com/clearpathhq/supportbot/internal/rag/vectorDB/qdrantDB"
	"github.com/clearpathhq/supportbot/internal/server"
	"github.com/clearpathhq/supportbot/internal/worker"
	"github.com/clearpathhq/supportbot/pkg/logger_i"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//init job service and the stores
	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
	}
	logger.Info("Starting job service")

	var convStore chatModel.ConversationStore
	storeMode := "redis"

	redisJobs := store.GetRedisJobStore(serviceContext)
	redisConvs := store.GetRedisConversationStore(serviceContext)
	if redisJobs == nil || redisConvs == nil {
		if !config.FALLBACK_REDIS_TO_INTERNALSTORE {
			logger.Error("Redis stores are offline")
			return
		}
		logger.Warn("Redis stores are offline, using in-memory fallback")
		serviceConfig.JobStore = store.InitInMemoryJobStore()
		convStore = store.InitInMemoryConversationStore()
		storeMode = "memory"
	} else {
		serviceConfig.JobStore = redisJobs
		convStore = redisConvs
	}
	service := job.InitJobService(serviceConfig)

	//vector backend, in-process unless configured otherwise
	searchStore, memStore := selectVectorBackend(serviceContext)
	if searchStore == nil {
		logger.Error("Vector backend failed to initialize. Shutting down.")
		return
	}

	embeddingService := hashEmbedding.GetHashEmbedder()
	llmProvider := selectProvider(serviceContext)
	if llmProvider == nil {
		logger.Error("LLM provider failed to initialize. Shutting down.")
		logger.Debug("Set GROQ_API_KEY, or LLM_PROVIDER=gemini with GEMINI_API_KEY")
		return
	}

	ragService := rag.NewService(searchStore, llmProvider, embeddingService)

	//docs shipped with the service are indexed before traffic is served
	bootstrapDocs(serviceContext, ragService, logger)
	if memStore != nil {
		memStore.Initialize()
	}

	handlers.InitHandlers(service, ragService, convStore, storeMode)

	//init worker pool
	worker.InitServices(service, ragService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}

// selectVectorBackend returns the active SearchStore, plus the concrete
// in-process store when that backend is chosen so main can mark it ready
// after bootstrap. Qdrant marks itself ready through the collection.
func selectVectorBackend(ctx context.Context) (vectorDB.SearchStore, *memoryDB.Store) {
	backend := config.VectorBackend
	if v := os.Getenv("VECTOR_BACKEND"); v != "" {
		backend = v
	}

	if strings.EqualFold(backend, "qdrant") {
		qs := qdrantDB.GetQdrantStore(ctx)
		if qs == nil {
			return nil, nil
		}
		return qs, nil
	}

	ms := memoryDB.NewStore()
	return ms, ms
}

func selectProvider(ctx context.Context) llm.Provider {
	if strings.EqualFold(os.Getenv("LLM_PROVIDER"), "gemini") {
		return gemini.GetGeminiClient(ctx, customHttpClient.GetPooledClient())
	}
	return groq.GetGroqClient(customHttpClient.GetPooledClient())
}

// bootstrapDocs ingests every supported file in the docs directory
// synchronously. Bootstrap files stay on disk, KeepSource guards them
// from the post-ingest cleanup.
func bootstrapDocs(ctx context.Context, ragService rag.Service, logger *logger_i.Logger) {
	entries, err := os.ReadDir(config.DocsDir)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("No docs directory, starting with an empty index", "dir", config.DocsDir)
			return
		}
		logger.Error("Could not read docs directory", "dir", config.DocsDir, "err", err)
		return
	}

	indexed := 0
	for _, entry := range entries {
		if entry.IsDir() || !ingest.SupportedType(entry.Name()) {
			continue
		}

		bootJob := jobmodel.Job{
			Id:          utils.GetNewUUID(),
			TraceId:     "bootstrap",
			JobType:     jobmodel.JobTypeIngest,
			Status:      jobmodel.JobStatusQueued,
			CurrentStep: jobmodel.IngestInit,
		}
		bootJob.JobPayload.DocName = entry.Name()
		bootJob.JobPayload.StoredPath = filepath.Join(config.DocsDir, entry.Name())
		bootJob.JobPayload.KeepSource = true

		bootJob = ragService.IngestDocument(ctx, bootJob)
		if bootJob.Status != jobmodel.JobStatusComplete {
			logger.Error("Bootstrap ingestion failed", "doc", entry.Name(), "message", bootJob.Error.Message)
			continue
		}
		indexed++
	}
	logger.Info("Bootstrap ingestion finished", "documents", indexed)
}
