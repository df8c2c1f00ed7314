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

package resource

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mCommits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "surf_session_commits_total",
		Help: "Number of successful session commits.",
	})
	mCommitErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "surf_session_commit_errors_total",
		Help: "Number of session commits stopped by an error.",
	})
	mCommitResources = promauto.NewCounter(prometheus.CounterOpts{
		Name: "surf_session_committed_resources_total",
		Help: "Number of resources written by session commits.",
	})
	mCommitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "surf_session_commit_seconds",
		Help: "Time to commit a session.",
	})
	mResolves = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "surf_resource_resolves_total",
		Help: "Number of attribute containers resolved, by source.",
	}, []string{"source"})
)
