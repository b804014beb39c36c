// Copyright 2024 The OpenIndex Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package crawler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pagesParsed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "openindex",
		Name:      "pages_parsed_total",
		Help:      "Listing pages parsed, labeled by the winning dialect.",
	}, []string{"dialect"})

	parseErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "openindex",
		Name:      "parse_errors_total",
		Help:      "Fetched listing pages whose parse ended in error=true.",
	})

	fetchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "openindex",
		Name:      "fetch_errors_total",
		Help:      "Listing pages that could not be fetched.",
	})

	filesIndexed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "openindex",
		Name:      "files_indexed_total",
		Help:      "File entries discovered across all directories.",
	})

	bytesIndexed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "openindex",
		Name:      "bytes_indexed_total",
		Help:      "Sum of the known file sizes discovered.",
	})
)
