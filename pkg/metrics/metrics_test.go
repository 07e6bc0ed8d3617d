package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating options", func() {
			namespaceOpt := WithNamespace("test-namespace")
			subsystemOpt := WithSubsystem("test-subsystem")
			histogramBucketsOpt := WithHistogramBuckets([]float64{0.1, 0.5, 1.0})
			metricsEnabledOpt := WithMetricsEnabled(true)

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(histogramBucketsOpt, ShouldNotBeNil)
				So(metricsEnabledOpt, ShouldNotBeNil)
			})
		})
	})
}

func TestManagerCreation(t *testing.T) {
	Convey("Given manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the package-level recorders", t, func() {
		Convey("Business metrics record without panicking", func() {
			So(func() {
				RecordRecommendationsServed(5)
				RecordSimilarityQuery()
				RecordScoringDuration(1.25)
				RecordRotationAdd()
				RecordShoeRetired()
				UpdateCatalogSize(42)
			}, ShouldNotPanic)
		})

		Convey("Store metrics record without panicking", func() {
			So(func() {
				RecordStoreQueryLatency(0.8)
				RecordStoreError()
			}, ShouldNotPanic)
		})

		Convey("HTTP and auth metrics record without panicking", func() {
			So(func() {
				RecordAuthFailure()
				RecordHTTPRequest("shoes", "GET", "200")
				RecordHTTPRequestDuration("shoes", "GET", "200", 3.5)
				RecordErrorByEndpoint("shoes", "GET", "not_found")
				RecordErrorByType("not_found", "medium")
				RecordErrorLatency("http", "not_found", 3.5)
			}, ShouldNotPanic)
		})

		Convey("System metrics record without panicking", func() {
			So(func() {
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.2)
			}, ShouldNotPanic)
		})

		Convey("The global registry is exposed for the metrics endpoint", func() {
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}
