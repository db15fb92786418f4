// Copyright (C) 2024, EmberVM Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	scriptsExecuted      prometheus.Counter
	scriptsPanicked      prometheus.Counter
	instructionsExecuted prometheus.Counter

	stackBytesExtended prometheus.Counter
	heapBytesAllocated prometheus.Counter
	bulkBytesTouched   prometheus.Counter
}

func newMetrics() (*prometheus.Registry, *metrics, error) {
	r := prometheus.NewRegistry()
	m := &metrics{
		scriptsExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "runtime",
			Name:      "scripts_executed",
			Help:      "number of scripts executed",
		}),
		scriptsPanicked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "runtime",
			Name:      "scripts_panicked",
			Help:      "number of scripts aborted with a panic receipt",
		}),
		instructionsExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "runtime",
			Name:      "instructions_executed",
			Help:      "number of instructions executed",
		}),
		stackBytesExtended: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "runtime",
			Name:      "stack_bytes_extended",
			Help:      "bytes added to call frames",
		}),
		heapBytesAllocated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "runtime",
			Name:      "heap_bytes_allocated",
			Help:      "bytes allocated on the heap",
		}),
		bulkBytesTouched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "runtime",
			Name:      "bulk_bytes_touched",
			Help:      "bytes moved or cleared by bulk memory operations",
		}),
	}
	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.scriptsExecuted),
		r.Register(m.scriptsPanicked),
		r.Register(m.instructionsExecuted),
		r.Register(m.stackBytesExtended),
		r.Register(m.heapBytesAllocated),
		r.Register(m.bulkBytesTouched),
	)
	return r, m, errs.Err
}
