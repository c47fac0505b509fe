// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/gemfarm/log"
	"github.com/vechain/gemfarm/lvldb"
	"github.com/vechain/gemfarm/metrics"
)

func initLogger(ctx *cli.Context) *slog.LevelVar {
	var level slog.LevelVar
	level.Set(log.FromLegacyLevel(ctx.Int(verbosityFlag.Name)))

	var handler slog.Handler
	if ctx.Bool(jsonLogsFlag.Name) {
		handler = log.JSONHandlerWithLevel(os.Stderr, &level)
	} else {
		fd := os.Stderr.Fd()
		useColor := (isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)) && os.Getenv("TERM") != "dumb"
		handler = log.NewTerminalHandlerWithLevel(os.Stderr, &level, useColor)
	}
	log.SetDefault(log.NewLogger(handler))
	return &level
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

func defaultDataDir() string {
	if home := homeDir(); home != "" {
		return filepath.Join(home, ".gemfarm")
	}
	return ""
}

func normalizeCacheSize(sizeMB int) int {
	if sizeMB < 16 {
		sizeMB = 16
	}
	return sizeMB
}

// openMainDB opens the database in data-dir when persisting, otherwise an
// in-memory one. It returns the location for the startup message.
func openMainDB(ctx *cli.Context) (*lvldb.LevelDB, string, error) {
	if !ctx.Bool(persistFlag.Name) {
		db, err := lvldb.NewMem()
		if err != nil {
			return nil, "", errors.Wrap(err, "open memory database")
		}
		return db, "memory", nil
	}

	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return nil, "", errors.Errorf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name)
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, "", errors.Wrapf(err, "create data dir [%v]", dataDir)
	}

	path := filepath.Join(dataDir, "main.db")
	cacheMB := normalizeCacheSize(ctx.Int(cacheFlag.Name))
	log.Debug("cache size(MB)", "size", cacheMB)

	db, err := lvldb.New(path, lvldb.Options{
		CacheSize:              cacheMB,
		OpenFilesCacheCapacity: 64,
	})
	if err != nil {
		return nil, "", errors.Wrapf(err, "open main database [%v]", path)
	}
	return db, path, nil
}

// serve runs srv on addr until the returned func is called.
func serve(addr string, srv *http.Server) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, err
	}

	var eg errgroup.Group
	eg.Go(func() error {
		if err := srv.Serve(listener); err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	return "http://" + listener.Addr().String(), func() {
		srv.Close()
		if err := eg.Wait(); err != nil {
			log.Warn("server stopped", "addr", addr, "error", err)
		}
	}, nil
}

func startAPIServer(ctx *cli.Context, handler http.Handler) (string, func(), error) {
	addr := ctx.String(apiAddrFlag.Name)
	if timeout := ctx.Uint64(apiTimeoutFlag.Name); timeout > 0 {
		handler = http.TimeoutHandler(handler, time.Duration(timeout)*time.Millisecond, `{"error":"timeout"}`)
	}
	handler = http.MaxBytesHandler(handler, 96*1000)

	url, stop, err := serve(addr, &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second})
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen API addr [%v]", addr)
	}
	return url + "/", stop, nil
}

func startMetricsServer(addr string) (string, func(), error) {
	router := http.NewServeMux()
	router.Handle("/metrics", metrics.HTTPHandler())

	url, stop, err := serve(addr, &http.Server{Handler: router, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second})
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen metrics addr [%v]", addr)
	}
	return url + "/metrics", stop, nil
}

func handleExitSignal() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func printStartupMessage(dbPath, apiURL, metricsURL, adminURL string, farmCount int) {
	fmt.Printf(`Starting %v
    Database     [ %v ]
    Farms        [ %v ]
    API portal   [ %v ]
    Metrics      [ %v ]
    Admin        [ %v ]
`,
		"GemFarm/"+fullVersion(),
		dbPath,
		farmCount,
		apiURL,
		orDisabled(metricsURL),
		orDisabled(adminURL),
	)
}

func orDisabled(url string) string {
	if url == "" {
		return "Disabled"
	}
	return url
}
