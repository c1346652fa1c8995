package bench

import (
	"time"

	"github.com/poiesic/cyberbench/core"
)

// Monitor provides hooks to observe a benchmark run.
// Implement this interface to export progress and per-entry outcomes.
type Monitor interface {
	RunStarted(runID string, total int)
	EntryStarted(index int, entry *core.DatasetEntry)
	QueryFailed(entry *core.DatasetEntry, err error)
	ValidationFallback(entry *core.DatasetEntry, fallback core.Fallback)
	ParseFallback(entry *core.DatasetEntry, fallback core.Fallback)
	EntryFinished(index int, result *core.BenchmarkEntry, elapsed time.Duration)
	RunFinished(summary *core.Summary)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) RunStarted(_ string, _ int)                                  {}
func (n *noopMonitor) EntryStarted(_ int, _ *core.DatasetEntry)                    {}
func (n *noopMonitor) QueryFailed(_ *core.DatasetEntry, _ error)                   {}
func (n *noopMonitor) ValidationFallback(_ *core.DatasetEntry, _ core.Fallback)    {}
func (n *noopMonitor) ParseFallback(_ *core.DatasetEntry, _ core.Fallback)         {}
func (n *noopMonitor) EntryFinished(_ int, _ *core.BenchmarkEntry, _ time.Duration) {}
func (n *noopMonitor) RunFinished(_ *core.Summary)                                 {}
