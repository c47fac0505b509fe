// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package middleware

import (
	"bytes"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/pborman/uuid"

	"github.com/vechain/gemfarm/log"
)

// RequestIDHeader carries the id of a request, generated when the client sends none.
const RequestIDHeader = "x-request-id"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// RequestLoggerMiddleware logs requests when enabled, when slower than
// slowQueriesThreshold, or when they fail with 5xx and log5xxErrors is set.
func RequestLoggerMiddleware(
	logger log.Logger,
	enabled *atomic.Bool,
	slowQueriesThreshold time.Duration,
	log5xxErrors bool,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.New()
			}
			w.Header().Set(RequestIDHeader, requestID)

			if !enabled.Load() && slowQueriesThreshold == 0 && !log5xxErrors {
				next.ServeHTTP(w, r)
				return
			}

			// the body can be read once, keep a copy for the handler
			var bodyBytes []byte
			if r.Body != nil {
				var err error
				bodyBytes, err = io.ReadAll(r.Body)
				if err != nil {
					logger.Warn("unexpected body read error", "err", err)
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r)
			duration := time.Since(start)

			slow := slowQueriesThreshold > 0 && duration > slowQueriesThreshold
			failed := log5xxErrors && rec.status >= http.StatusInternalServerError
			if enabled.Load() || slow || failed {
				logger.Info("API Request",
					"RequestID", requestID,
					"DurationMs", duration.Milliseconds(),
					"Timestamp", time.Now().Unix(),
					"URI", r.URL.String(),
					"Method", r.Method,
					"Status", rec.status,
					"Body", string(bodyBytes),
				)
			}
		})
	}
}
