package commonModels

import "time"

type Document struct {
	Id                  string    `json:"source_doc_id"`
	Name                string    `json:"doc_name"`
	LastIngestTimestamp time.Time `json:"ingested_at"`
	ContentType         DocType   `json:"contentType"`
}

// Page is the unit of extraction, chunking never crosses page boundaries.
type Page struct {
	Number int    `json:"page_num"`
	Text   string `json:"text"`
}

type DocChunk struct {
	Doc            Document
	ChunkId        string `json:"chunk_id"`
	Chunk          string `json:"content"`
	PageNum        int    `json:"page_num"`
	Ordinal        int    `json:"chunk_order"`
	EmbeddingModel string `json:"embedding_model"`
}

type DocType string

var PDF DocType = "PDF"
var DOCX DocType = "DOCX"
var TXT DocType = "TXT"
var RTF DocType = "RTF"
var ERR DocType = "ERROR"
