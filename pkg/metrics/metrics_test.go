package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given a metrics manager", t, func() {
		Convey("When created on a fresh registry", func() {
			m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))
			So(m, ShouldNotBeNil)
		})

		Convey("When created with custom options", func() {
			m := NewManager(
				WithNamespace("test-ns"),
				WithSubsystem("test-sub"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)
			So(m, ShouldNotBeNil)
			So(m.namespace, ShouldEqual, "test-ns")
			So(m.subsystem, ShouldEqual, "test-sub")
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("Then the recording helpers do not panic", func() {
			So(func() {
				RecordPointAccepted()
				RecordPointRejected()
				RecordBenchmarkComputed()
				RecordInsufficientData()
				RecordCacheHit()
				RecordCacheMiss()
				RecordCacheInvalidation(3)
				UpdateParticipantCount(10)
				UpdatePointCounts(100, 40)
				UpdateNetworkEffect(0.4, 0.2, 0.3)
				RecordJournalWrite()
				RecordJournalError()
				RecordHTTPRequest("/benchmarks", "GET", "200")
				RecordHTTPRequestDuration("/benchmarks", "GET", 0.02)
			}, ShouldNotPanic)
		})

		Convey("Then the registry and handler are exposed", func() {
			So(GetRegistry(), ShouldNotBeNil)
			So(GetHandler(), ShouldNotBeNil)
		})
	})
}
