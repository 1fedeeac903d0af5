package metric

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// KeyspaceSource is the slice of *keyspace.Keyspace that metrics reads from.
// Defined here instead of imported directly so this package doesn't need to
// depend on internal/keyspace for its own tests.
type KeyspaceSource interface {
	NumDB() int
	DBSize(db int) int
	Lock()
	Unlock()

	HitCount() int64
	MissCount() int64
	ExpiredKeyCount() int64
}

var keysDesc = prometheus.NewDesc(
	"sedris_keys",
	"Number of keys resident in a database.",
	[]string{"db"}, nil,
)

// keyspaceCollector implements prometheus.Collector, refreshing sedris_keys
// by locking the keyspace and reading each database's size at scrape time
// rather than tracking a gauge that every Put/Delete would have to update.
type keyspaceCollector struct {
	ks KeyspaceSource
}

func newKeyspaceCollector(ks KeyspaceSource) *keyspaceCollector {
	return &keyspaceCollector{ks: ks}
}

func (c *keyspaceCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- keysDesc
}

func (c *keyspaceCollector) Collect(ch chan<- prometheus.Metric) {
	c.ks.Lock()
	defer c.ks.Unlock()
	for i := 0; i < c.ks.NumDB(); i++ {
		ch <- prometheus.MustNewConstMetric(
			keysDesc, prometheus.GaugeValue, float64(c.ks.DBSize(i)), strconv.Itoa(i),
		)
	}
}
