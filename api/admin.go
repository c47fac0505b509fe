// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/vechain/gemfarm/api/utils"
	"github.com/vechain/gemfarm/log"
)

// Admin serves runtime controls of the node: the log level and the request logger switch.
type Admin struct {
	address     string
	logLevel    *slog.LevelVar
	logRequests *atomic.Bool
}

func NewAdmin(addr string, logLevel *slog.LevelVar, logRequests *atomic.Bool) *Admin {
	return &Admin{
		address:     addr,
		logLevel:    logLevel,
		logRequests: logRequests,
	}
}

func (a *Admin) handler() http.Handler {
	router := mux.NewRouter()
	sub := router.PathPrefix("/admin").Subrouter()

	sub.Path("/loglevel").
		Methods(http.MethodGet).
		Name("GET /admin/loglevel").
		HandlerFunc(utils.WrapHandlerFunc(a.getLogLevel))
	sub.Path("/loglevel").
		Methods(http.MethodPost).
		Name("POST /admin/loglevel").
		HandlerFunc(utils.WrapHandlerFunc(a.postLogLevel))

	sub.Path("/apilogs").
		Methods(http.MethodGet).
		Name("GET /admin/apilogs").
		HandlerFunc(utils.WrapHandlerFunc(a.getRequestLogger))
	sub.Path("/apilogs").
		Methods(http.MethodPost).
		Name("POST /admin/apilogs").
		HandlerFunc(utils.WrapHandlerFunc(a.postRequestLogger))

	return handlers.CompressHandler(router)
}

// Start listens on the admin address and returns the admin url and a func to stop serving.
func (a *Admin) Start() (string, func(), error) {
	listener, err := net.Listen("tcp", a.address)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen admin API addr [%v]", a.address)
	}

	server := &http.Server{Handler: a.handler(), ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	var eg errgroup.Group
	eg.Go(func() error {
		if err := server.Serve(listener); err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	stop := func() {
		server.Close()
		if err := eg.Wait(); err != nil {
			logger.Warn("admin server stopped", "error", err)
		}
	}
	return "http://" + listener.Addr().String() + "/admin", stop, nil
}

type logLevelRequest struct {
	Level string `json:"level"`
}

type logLevelResponse struct {
	CurrentLevel string `json:"currentLevel"`
}

func (a *Admin) getLogLevel(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteJSON(w, logLevelResponse{
		CurrentLevel: log.LevelString(a.logLevel.Level()),
	})
}

func (a *Admin) postLogLevel(w http.ResponseWriter, r *http.Request) error {
	var req logLevelRequest
	if err := utils.ParseJSON(r.Body, &req); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "invalid request body"))
	}

	switch req.Level {
	case "trace":
		a.logLevel.Set(log.LevelTrace)
	case "debug":
		a.logLevel.Set(log.LevelDebug)
	case "info":
		a.logLevel.Set(log.LevelInfo)
	case "warn":
		a.logLevel.Set(log.LevelWarn)
	case "error":
		a.logLevel.Set(log.LevelError)
	case "crit":
		a.logLevel.Set(log.LevelCrit)
	default:
		return utils.BadRequest(errors.Errorf("invalid verbosity level: %s", req.Level))
	}

	log.Warn("admin changed the log level", "level", log.LevelString(a.logLevel.Level()))
	return a.getLogLevel(w, r)
}

type apiLogRequests struct {
	Enabled *bool `json:"enabled"`
}

func (a *Admin) getRequestLogger(w http.ResponseWriter, _ *http.Request) error {
	enabled := a.logRequests.Load()
	return utils.WriteJSON(w, apiLogRequests{Enabled: &enabled})
}

func (a *Admin) postRequestLogger(w http.ResponseWriter, r *http.Request) error {
	var req apiLogRequests
	if err := utils.ParseJSON(r.Body, &req); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "invalid request body"))
	}
	if req.Enabled == nil {
		return utils.BadRequest(errors.New("missing 'enabled' field"))
	}

	log.Warn("admin changed the request logger", "enabled", *req.Enabled)
	a.logRequests.Store(*req.Enabled)

	return utils.WriteJSON(w, req)
}
