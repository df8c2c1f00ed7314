// Copyright 2026 The Cayley Authors. All rights reserved.
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

package sparql

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "surf_sparql_requests_total",
		Help: "Number of requests sent to SPARQL endpoints.",
	}, []string{"endpoint", "code"})
	mRequestSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "surf_sparql_request_seconds",
		Help: "Time to run a request against a SPARQL endpoint.",
	}, []string{"endpoint"})

	mCacheHit = promauto.NewCounter(prometheus.CounterOpts{
		Name: "surf_sparql_cache_hits",
		Help: "Number of queries answered from the result cache.",
	})
	mCacheMiss = promauto.NewCounter(prometheus.CounterOpts{
		Name: "surf_sparql_cache_miss",
		Help: "Number of cacheable queries sent to the endpoint.",
	})
	mCachePurge = promauto.NewCounter(prometheus.CounterOpts{
		Name: "surf_sparql_cache_purges",
		Help: "Number of times the result cache was purged by a write.",
	})
)
