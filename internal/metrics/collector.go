package metrics

import (
	"context"
	"time"

	"github.com/dmitrijs2005/passkeeper/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
)

// CountFunc reports a row count from the store.
type CountFunc func(ctx context.Context) (int64, error)

// StoredAccountsCollector reports the number of stored account and history
// rows on each scrape.
type StoredAccountsCollector struct {
	count   CountFunc
	timeout time.Duration
	log     logging.Logger

	storedAccounts *prometheus.Desc
}

// NewStoredAccountsCollector creates a collector backed by count. Query
// failures are reported through log.
func NewStoredAccountsCollector(count CountFunc, log logging.Logger) *StoredAccountsCollector {
	return &StoredAccountsCollector{
		count:   count,
		timeout: 5 * time.Second,
		log:     log,
		storedAccounts: prometheus.NewDesc(
			"passkeeper_stored_accounts",
			"Number of stored accounts including history snapshots",
			nil, nil,
		),
	}
}

// Describe sends metric descriptors to Prometheus.
func (c *StoredAccountsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.storedAccounts
}

// Collect queries the store and sends the current value. Errors are logged
// and reported as zero so the scrape does not fail.
func (c *StoredAccountsCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	n, err := c.count(ctx)
	if err != nil {
		c.log.Error(ctx, "failed to query stored accounts", "error", err)
		n = 0
	}

	ch <- prometheus.MustNewConstMetric(c.storedAccounts, prometheus.GaugeValue, float64(n))
}
