package store

import (
	"fmt"
	"time"

	"github.com/VictoriaMetrics/metrics"
)

// namespaceMetrics are the counters of one namespace, registered in the default metrics set
type namespaceMetrics struct {
	reads        *metrics.Counter
	writes       *metrics.Counter
	commits      *metrics.Counter
	commitErrors *metrics.Counter
	reloads      *metrics.Counter
	saveDuration *metrics.Histogram
}

func newNamespaceMetrics(name string) *namespaceMetrics {
	label := fmt.Sprintf(`{namespace=%q}`, name)
	return &namespaceMetrics{
		reads:        metrics.GetOrCreateCounter("sprefs_reads_total" + label),
		writes:       metrics.GetOrCreateCounter("sprefs_writes_total" + label),
		commits:      metrics.GetOrCreateCounter("sprefs_commits_total" + label),
		commitErrors: metrics.GetOrCreateCounter("sprefs_commit_errors_total" + label),
		reloads:      metrics.GetOrCreateCounter("sprefs_reloads_total" + label),
		saveDuration: metrics.GetOrCreateHistogram("sprefs_save_duration_seconds" + label),
	}
}

func (m *namespaceMetrics) observeSave(start time.Time) {
	m.saveDuration.Update(time.Since(start).Seconds())
}
