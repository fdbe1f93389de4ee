package middleware

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/clearpathhq/supportbot/internal/handlers"
	"github.com/clearpathhq/supportbot/internal/metrics"
	"github.com/clearpathhq/supportbot/pkg/logger_i"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
	id           string
}

var GetHandler = Wrap(handlers.GetHandler)
var HealthHandler = Wrap(handlers.HealthHandler)

var QueryHandler = Wrap(handlers.QueryHandler)
var QueryStreamHandler = Wrap(handlers.QueryStreamHandler)

var ListConversationsHandler = Wrap(handlers.ListConversationsHandler)
var GetConversationHandler = Wrap(handlers.GetConversationHandler)
var RenameConversationHandler = Wrap(handlers.RenameConversationHandler)
var DeleteConversationHandler = Wrap(handlers.DeleteConversationHandler)

var PostDocumentHandler = Wrap(handlers.PostDocumentHandler)
var GetIngestStatusHandler = Wrap(handlers.GetIngestStatusHandler)
var DeleteDocumentHandler = Wrap(handlers.DeleteDocumentHandler)

func Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: http.StatusOK} //metrics
		re := processRequest(requestResponseStruct{req: r, writer: rec})

		if re.badRequest.isBadRequest {
			handleBadRequest(re)
		} else {
			next(rec, re.req)
		}

		// label by route pattern, raw paths would blow up cardinality
		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		metrics.HttpRequestsTotal.WithLabelValues(path, strconv.Itoa(rec.Status)).Inc() //metrics
	}
}

func processRequest(re requestResponseStruct) requestResponseStruct {
	re.logger = logger_i.NewLogger("middleware")
	re = injectTrace(re)
	if re.badRequest.isBadRequest {
		return re
	}
	re = authenticate(re)
	if re.badRequest.isBadRequest {
		return re
	}
	return rateLimiter(re)
}
