// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"net/http/pprof"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/gemfarm/api/balances"
	"github.com/vechain/gemfarm/api/farms"
	"github.com/vechain/gemfarm/api/middleware"
	"github.com/vechain/gemfarm/api/utils"
	"github.com/vechain/gemfarm/api/vaults"
	"github.com/vechain/gemfarm/farm"
	"github.com/vechain/gemfarm/log"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins       string
	PprofOn              bool
	EnableMetrics        bool
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
	Log5xxErrors         bool
	// Faucet lets anyone mint into the custody ledger.
	Faucet bool
}

// New returns the api handler.
func New(controller *farm.Controller, clock farm.Clock, opts Options) http.Handler {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	farms.New(controller, clock).
		Mount(router, "/farms")
	vaults.New(controller).
		Mount(router, "/vaults")
	balances.New(controller, opts.Faucet).
		Mount(router, "/balances")

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	enabled := opts.EnableReqLogger
	if enabled == nil {
		enabled = &atomic.Bool{}
	}
	router.Use(middleware.RequestLoggerMiddleware(logger, enabled, opts.SlowQueriesThreshold, opts.Log5xxErrors))

	handler := handlers.CompressHandler(router)
	return handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodDelete}),
		handlers.AllowedHeaders([]string{"content-type", utils.CallerHeader, middleware.RequestIDHeader}),
		handlers.ExposedHeaders([]string{middleware.RequestIDHeader}),
	)(handler)
}
