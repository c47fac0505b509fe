// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for the farm database",
	}
	persistFlag = cli.BoolFlag{
		Name:  "persist",
		Usage: "keep state in data-dir instead of memory",
	}
	cacheFlag = cli.IntFlag{
		Name:  "cache",
		Usage: "megabytes of ram allocated to the database",
		Value: 128,
	}
	stateCacheFlag = cli.IntFlag{
		Name:  "state-cache",
		Usage: "number of state slots kept in the read cache",
		Value: 65536,
	}
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path to a yaml file of farms and balances applied to a fresh state",
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8679",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	apiTimeoutFlag = cli.Uint64Flag{
		Name:  "api-timeout",
		Value: 10000,
		Usage: "API request timeout value in milliseconds",
	}
	apiSlowQueriesThresholdFlag = cli.Uint64Flag{
		Name:  "api-slow-queries-threshold",
		Value: 0,
		Usage: "all queries with duration(ms) above the threshold will be logged",
	}
	apiLog5xxErrorsFlag = cli.BoolFlag{
		Name:  "api-log-5xx-errors",
		Usage: "log all requests failing with 5xx",
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:  "enable-api-logs",
		Usage: "enables API requests logging",
	}
	faucetFlag = cli.BoolFlag{
		Name:  "faucet",
		Usage: "let anyone mint into the custody ledger through the API, for test & dev",
	}
	pprofFlag = cli.BoolFlag{
		Name:  "pprof",
		Usage: "turn on go-pprof",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-9)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:2112",
		Usage: "metrics service listening address",
	}
	enableAdminFlag = cli.BoolFlag{
		Name:  "enable-admin",
		Usage: "enables admin server",
	}
	adminAddrFlag = cli.StringFlag{
		Name:  "admin-addr",
		Value: "localhost:2113",
		Usage: "admin service listening address",
	}
)
