package handlers

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/clearpathhq/supportbot/internal/adapter"
	"github.com/clearpathhq/supportbot/internal/adapter/utils"
	"github.com/clearpathhq/supportbot/internal/config"
	"github.com/clearpathhq/supportbot/internal/rag/ingest"
)

// PostDocumentHandler godoc
// @Summary      Upload a document for ingestion
// @Description  Receives a file via multipart/form-data, stages it, and queues an async ingestion job. Re-uploading a document name replaces its chunks atomically.
// @Tags         Documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        document_name  formData  string  true  "The display name of the document"
// @Param        document       formData  file    true  "The pdf, docx, txt, md or rtf file to upload"
// @Success      202  {object}  api.InitJobResponse  "Accepted, poll the status URL"
// @Failure      400  {object}  api.ErrorResponse    "Missing fields, unsupported type or file too large"
// @Failure      500  {object}  api.ErrorResponse    "Storage or write error"
// @Router       /documents [post]
func PostDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid context by request", "remote", r.RemoteAddr)
		return
	}

	targetDir, errString := getTargetDirectory()
	if errString != "" {
		logRH.Error("Couldn't get target directory", "err", errString)
		WriteErrorResponse(w, http.StatusInternalServerError, "", errString)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadBytes)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
		return
	}

	docName := r.FormValue("document_name")
	if docName == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "", "document_name is required")
		return
	}

	fileReader, fileMetadata, err := r.FormFile("document")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, docName, "Could not retrieve file")
		return
	}
	defer fileReader.Close()

	if !ingest.SupportedType(fileMetadata.Filename) {
		WriteErrorResponse(w, http.StatusBadRequest, docName, "Unsupported document type")
		return
	}

	filename := fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(fileMetadata.Filename))
	stagedPath := filepath.Join(targetDir, filename)
	destinationFileWriter, err := os.Create(stagedPath)
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, docName, "Storage error")
		return
	}
	defer destinationFileWriter.Close()

	if _, err := io.Copy(destinationFileWriter, fileReader); err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, docName, "Write error")
		return
	}

	data := newJobData{
		id:         utils.GetNewUUID(),
		traceId:    traceID(r.Context()),
		docName:    docName,
		storedPath: stagedPath,
	}
	CreateIngestJob(data)
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(data.id))
}

// GetIngestStatusHandler godoc
// @Summary      Get ingestion job status
// @Description  Retrieves the current state of an ingestion job by its ID.
// @Tags         Documents
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  api.JobResponse
// @Failure      404  {object}  api.ErrorResponse  "Job not found"
// @Router       /documents/status/{id} [get]
func GetIngestStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	idString := utils.GetChiURLParam(r, "id")
	result, isFound := validateId(idString, traceID(r.Context()))

	logRH.Debug("Get status request", "path", r.URL.Path)
	if !isFound {
		WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToJobResponse(result))
}

// DeleteDocumentHandler godoc
// @Summary      Remove a document from the index
// @Description  Drops every chunk of the named document. Removing an unknown document is a no-op.
// @Tags         Documents
// @Param        name  path  string  true  "Document name as it was ingested"
// @Success      204  "Removed"
// @Failure      500  {object}  api.ErrorResponse
// @Router       /documents/{name} [delete]
func DeleteDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	name := utils.GetChiURLParam(r, "name")
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	if name == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "", "Document name is required")
		return
	}

	if err := handlerInstance.rag.RemoveDocument(r.Context(), name); err != nil {
		logRH.Error("Failed to remove document", "doc", name, "err", err)
		WriteErrorResponse(w, http.StatusInternalServerError, name, "Could not remove document")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
