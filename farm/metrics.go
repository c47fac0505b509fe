// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

import "github.com/vechain/gemfarm/metrics"

var (
	metricOperationCount = metrics.LazyLoadCounterVec("farm_operation_count", []string{"op", "result"})
	metricGemsStaked     = metrics.LazyLoadGaugeVec("farm_gems_staked", []string{"farm"})
)
