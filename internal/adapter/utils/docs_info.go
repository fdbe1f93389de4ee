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
package utils

//run redis
//docker run -p 6379:6379 -d redis

//optional remote vector backend
//docker run -p 6333:6333 -p 6334:6334 -v vectorDBData:/qdrant/storage qdrant/qdrant

//swagger init
//swag init -g cmd/api/main.go --parseDependency --parseInternal --dir ./ --output ./cmd/api/docs
