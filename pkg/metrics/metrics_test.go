package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"oilgas-dashboard/internal/models"
)

func TestCollector_RecordLoad(t *testing.T) {
	c := NewCollector("test", prometheus.NewRegistry())

	c.RecordLoad(120, models.Diagnostics{
		models.CellParseFailure("volume", 3),
		models.CellParseFailure("production_date", 2),
		models.MissingOptionalColumn("county", `"Withheld"`),
	})

	assert.Equal(t, 120.0, testutil.ToFloat64(c.LoadRowsTotal))
	assert.Equal(t, 120.0, testutil.ToFloat64(c.DatasetRows))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.CellParseFailures.WithLabelValues("volume")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.DiagnosticsTotal.WithLabelValues("cell_parse_failure", "warning")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.DiagnosticsTotal.WithLabelValues("missing_optional_column", "warning")))
}

func TestCollector_RecordCache(t *testing.T) {
	c := NewCollector("test", prometheus.NewRegistry())

	c.RecordCache("load", false)
	c.RecordCache("load", true)
	c.RecordCache("load", true)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.CacheRequestsTotal.WithLabelValues("load", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.CacheRequestsTotal.WithLabelValues("load", "miss")))
}

func TestCollector_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewCollector("test", prometheus.NewRegistry())
		NewCollector("test", prometheus.NewRegistry())
	})
}

func TestTimer_ObserveDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector("test", reg)

	d := c.NewTimer(c.QueryDuration).ObserveDuration()

	assert.GreaterOrEqual(t, int64(d), int64(0))
	assert.Equal(t, 1, testutil.CollectAndCount(c.QueryDuration))
}

func TestCollector_RecordProcessingTime(t *testing.T) {
	c := NewCollector("test", prometheus.NewRegistry())

	c.RecordProcessingTime("clean_file", 1500*time.Microsecond)
	c.RecordProcessingTime("build_sample", 20*time.Millisecond)

	assert.Equal(t, 2, testutil.CollectAndCount(c.ProcessingTimeMS))
}
