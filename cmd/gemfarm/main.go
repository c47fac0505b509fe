// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	cli "gopkg.in/urfave/cli.v1"
	"gopkg.in/yaml.v3"

	"github.com/vechain/gemfarm/api"
	"github.com/vechain/gemfarm/custody"
	"github.com/vechain/gemfarm/farm"
	"github.com/vechain/gemfarm/log"
	"github.com/vechain/gemfarm/metrics"
	"github.com/vechain/gemfarm/state"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "GemFarm",
		Usage:     "Node serving gem farms and their reward accrual",
		Copyright: "2025 VeChain Foundation <https://vechain.org/>",
		Flags: []cli.Flag{
			dataDirFlag,
			persistFlag,
			cacheFlag,
			stateCacheFlag,
			configFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiTimeoutFlag,
			apiSlowQueriesThresholdFlag,
			apiLog5xxErrorsFlag,
			enableAPILogsFlag,
			faucetFlag,
			pprofFlag,
			verbosityFlag,
			jsonLogsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			enableAdminFlag,
			adminAddrFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:   "example-config",
				Usage:  "print an example seed config",
				Action: exampleConfigAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func exampleConfigAction(*cli.Context) error {
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(exampleConfig()); err != nil {
		return err
	}
	return enc.Close()
}

func defaultAction(ctx *cli.Context) error {
	exitSignal, cancel := handleExitSignal()
	defer cancel()

	defer func() { log.Info("exited") }()

	logLevel := initLogger(ctx)

	// metrics must be installed before any meter is first used
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	db, dbPath, err := openMainDB(ctx)
	if err != nil {
		return err
	}
	defer func() { log.Info("closing main database..."); db.Close() }()

	st := state.New(db, ctx.Int(stateCacheFlag.Name))
	controller := farm.New(st, custody.NewBook(st))

	if path := ctx.String(configFlag.Name); path != "" {
		cfg, err := loadConfig(path)
		if err != nil {
			return err
		}
		applied, err := cfg.Apply(controller, farm.WallClock())
		if err != nil {
			return err
		}
		if applied {
			log.Info("applied seed config", "path", path)
		} else {
			log.Info("state not empty, seed config skipped", "path", path)
		}
	}

	farmIDs, err := controller.Farms()
	if err != nil {
		return err
	}

	var metricsURL string
	if ctx.Bool(enableMetricsFlag.Name) {
		url, stop, err := startMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return err
		}
		defer func() { log.Info("stopping metrics server..."); stop() }()
		metricsURL = url
	}

	var logAPIRequests atomic.Bool
	logAPIRequests.Store(ctx.Bool(enableAPILogsFlag.Name))

	var adminURL string
	if ctx.Bool(enableAdminFlag.Name) {
		url, stop, err := api.NewAdmin(ctx.String(adminAddrFlag.Name), logLevel, &logAPIRequests).Start()
		if err != nil {
			return err
		}
		defer func() { log.Info("stopping admin server..."); stop() }()
		adminURL = url
	}

	handler := api.New(controller, farm.WallClock, api.Options{
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		PprofOn:              ctx.Bool(pprofFlag.Name),
		EnableMetrics:        ctx.Bool(enableMetricsFlag.Name),
		EnableReqLogger:      &logAPIRequests,
		SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		Log5xxErrors:         ctx.Bool(apiLog5xxErrorsFlag.Name),
		Faucet:               ctx.Bool(faucetFlag.Name),
	})
	apiURL, stopAPI, err := startAPIServer(ctx, handler)
	if err != nil {
		return err
	}
	defer func() { log.Info("stopping API server..."); stopAPI() }()

	printStartupMessage(dbPath, apiURL, metricsURL, adminURL, len(farmIDs))

	<-exitSignal.Done()
	return nil
}
