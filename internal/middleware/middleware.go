package middleware

import (
	"net/http"
	"strconv"

	"github.com/akolanti/CourseChatAPI/internal/handlers"
	"github.com/akolanti/CourseChatAPI/internal/metrics"
	"github.com/akolanti/CourseChatAPI/pkg/logger_i"
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
}

var GetHandler = Wrap(handlers.GetHandler)

var QueryHandler = Wrap(handlers.QueryHandler)
var PostIngestHandler = Wrap(handlers.PostIngestHandler)
var GetCoursesHandler = Wrap(handlers.GetCoursesHandler)
var GetSessionHistoryHandler = Wrap(handlers.GetSessionHistoryHandler)
var DeleteSessionHandler = Wrap(handlers.DeleteSessionHandler)

func Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: 200} //metrics
		re := processRequest(requestResponseStruct{req: r, writer: rec})

		if re.badRequest.isBadRequest {
			handleBadRequest(re)
			return
		}
		next(rec, re.req)

		metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.Status)).Inc() //metrics
	}
}

func processRequest(re requestResponseStruct) requestResponseStruct {
	re.logger = logger_i.NewLogger("middleware")
	re.logger.Info("New request received")
	re = injectTrace(re)
	re = authenticate(re)
	if re.badRequest.isBadRequest {
		return re //stop if auth fails
	}
	re = rateLimiter(re)
	return re
}
