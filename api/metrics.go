// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/vechain/gemfarm/metrics"
)

var (
	metricHTTPReqCounter  = metrics.LazyLoadCounterVec("api_request_count", []string{"name", "code", "method"})
	metricHTTPReqDuration = metrics.LazyLoadHistogramVec(
		"api_duration_ms", []string{"name", "code", "method"}, metrics.BucketHTTPReqs,
	)
)

// metricsResponseWriter captures the status code.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{w, http.StatusOK}
}

func (m *metricsResponseWriter) WriteHeader(code int) {
	m.statusCode = code
	m.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware records count and latency per route. Requests matching
// no named route are not recorded, which keeps the label set bounded.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := mux.CurrentRoute(r)
		if route == nil || route.GetName() == "" {
			next.ServeHTTP(w, r)
			return
		}

		now := time.Now()
		mrw := newMetricsResponseWriter(w)
		next.ServeHTTP(mrw, r)

		labels := map[string]string{
			"name":   route.GetName(),
			"code":   strconv.Itoa(mrw.statusCode),
			"method": r.Method,
		}
		metricHTTPReqCounter().AddWithLabel(1, labels)
		metricHTTPReqDuration().ObserveWithLabels(time.Since(now).Milliseconds(), labels)
	})
}
