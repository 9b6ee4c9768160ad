package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/esgbench/internal/app"
	"github.com/okian/esgbench/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func join(ctx context.Context, svc *app.Service, org, industry string) {
	_, err := svc.JoinNetwork(ctx, model.BenchmarkingProfile{
		OrganizationID: org,
		Industry:       industry,
		Size:           model.SizeMedium,
	}, model.PrivacySettings{})
	So(err, ShouldBeNil)
}

func TestBenchmarkResults(t *testing.T) {
	ctx := context.Background()

	Convey("Given the manufacturing cohort", t, func() {
		svc := newService()
		seedGHGCohort(ctx, svc)

		Convey("When fetching results for the worst in-range performer", func() {
			results, err := svc.BenchmarkResults(ctx, "org-06", []string{"ghg_intensity"})
			So(err, ShouldBeNil)
			So(len(results), ShouldEqual, 1)
			r := results[0]

			Convey("Then the comparison places it against the cohort", func() {
				So(r.Value, ShouldEqual, 14)
				So(r.Unavailable, ShouldBeFalse)
				So(r.Benchmark, ShouldNotBeNil)
				So(r.Comparison, ShouldNotBeNil)
				So(r.Comparison.YourPercentile, ShouldEqual, 95)
				So(r.Comparison.Position, ShouldEqual, model.TopDecile)
				So(r.Comparison.GapToMedian, ShouldAlmostEqual, -3, 1e-9)
			})

			Convey("Then confidence reflects sample, freshness and industry", func() {
				// 0.5 base + 0.1 (11 samples) + 0.2 (fresh) + 0.1 (industry)
				So(r.Confidence, ShouldAlmostEqual, 0.9, 1e-9)
			})
		})

		Convey("When a metric was never reported by the organization", func() {
			results, err := svc.BenchmarkResults(ctx, "org-06", []string{"board_diversity"})
			So(err, ShouldBeNil)
			So(len(results), ShouldEqual, 0)
		})

		Convey("When the metric's cohort is too small to release", func() {
			So(svc.AddDataPoint(ctx, model.MetricDataPoint{
				OrganizationID: "org-06",
				MetricID:       "board_diversity",
				Value:          35,
				Unit:           "%",
				Year:           2025,
			}), ShouldBeNil)

			results, err := svc.BenchmarkResults(ctx, "org-06", []string{"board_diversity"})
			So(err, ShouldBeNil)
			So(len(results), ShouldEqual, 1)
			So(results[0].Unavailable, ShouldBeTrue)
			So(results[0].Benchmark, ShouldBeNil)
		})

		Convey("When the organization never joined", func() {
			_, err := svc.BenchmarkResults(ctx, "org-99", []string{"ghg_intensity"})
			So(errors.Is(err, app.ErrUnknownOrganization), ShouldBeTrue)
		})
	})
}

func TestSimilarPeers(t *testing.T) {
	ctx := context.Background()

	Convey("Given a small tech cohort around one organization", t, func() {
		svc := newService(app.WithMinSampleSize(3), app.WithAggregationThreshold(2))
		for org, value := range map[string]float64{
			"subject": 100,
			"rival-a": 79,
			"rival-b": 95,
			"rival-c": 110,
			"rival-d": 130,
		} {
			join(ctx, svc, org, "tech")
			So(svc.AddDataPoint(ctx, model.MetricDataPoint{
				OrganizationID: org,
				MetricID:       "training_hours",
				Value:          value,
				Unit:           "h",
				Year:           2025,
			}), ShouldBeNil)
		}

		Convey("When fetching the subject's results", func() {
			results, err := svc.BenchmarkResults(ctx, "subject", []string{"training_hours"})
			So(err, ShouldBeNil)
			So(len(results), ShouldEqual, 1)
			peers := results[0].Comparison.SimilarPeers

			Convey("Then only peers within the similarity band appear, pseudonymized", func() {
				So(len(peers), ShouldEqual, 2)
				values := map[float64]bool{}
				for _, p := range peers {
					values[p.Value] = true
					So(p.ID, ShouldStartWith, "peer-")
					So(p.ID, ShouldNotBeIn, []string{"rival-b", "rival-c"})
				}
				So(values[95], ShouldBeTrue)
				So(values[110], ShouldBeTrue)
			})
		})
	})
}

func TestOrganizationTrendInResults(t *testing.T) {
	ctx := context.Background()

	Convey("Given organizations with multi-year emission histories", t, func() {
		svc := newService(app.WithMinSampleSize(3), app.WithAggregationThreshold(2))
		histories := map[string][2]float64{
			"org-a": {100, 80},  // -20%: improving for a lower-is-better metric
			"org-b": {100, 100}, // flat
			"org-c": {100, 103}, // +3%: inside the stable band
		}
		base := time.Now().Add(-365 * 24 * time.Hour)
		for org, vals := range histories {
			join(ctx, svc, org, "energy")
			for i, v := range vals {
				So(svc.AddDataPoint(ctx, model.MetricDataPoint{
					OrganizationID: org,
					MetricID:       "ghg_intensity",
					Value:          v,
					Unit:           "tCO2e/$M",
					Year:           2024 + i,
					RecordedAt:     base.Add(time.Duration(i) * 24 * time.Hour),
				}), ShouldBeNil)
			}
		}

		Convey("Then a falling emission intensity reads as improving", func() {
			results, err := svc.BenchmarkResults(ctx, "org-a", []string{"ghg_intensity"})
			So(err, ShouldBeNil)
			So(len(results), ShouldEqual, 1)
			trend := results[0].Comparison.Trend
			So(trend, ShouldNotBeNil)
			So(trend.Direction, ShouldEqual, model.TrendImproving)
			So(trend.RatePercent, ShouldAlmostEqual, -20, 1e-9)
			So(trend.Periods, ShouldEqual, 2)
		})

		Convey("Then a change inside the band reads as stable", func() {
			results, err := svc.BenchmarkResults(ctx, "org-c", []string{"ghg_intensity"})
			So(err, ShouldBeNil)
			So(results[0].Comparison.Trend.Direction, ShouldEqual, model.TrendStable)
		})
	})
}

func TestCompareOrganizations(t *testing.T) {
	ctx := context.Background()

	Convey("Given two organizations with partial metric coverage", t, func() {
		svc := newService()
		base := time.Now().Add(-48 * time.Hour)
		So(svc.AddDataPoint(ctx, model.MetricDataPoint{
			OrganizationID: "org-a", MetricID: "ghg_intensity",
			Value: 8, Unit: "tCO2e/$M", Year: 2024, RecordedAt: base,
		}), ShouldBeNil)
		So(svc.AddDataPoint(ctx, model.MetricDataPoint{
			OrganizationID: "org-a", MetricID: "ghg_intensity",
			Value: 10, Unit: "tCO2e/$M", Year: 2025, RecordedAt: base.Add(24 * time.Hour),
		}), ShouldBeNil)
		So(svc.AddDataPoint(ctx, model.MetricDataPoint{
			OrganizationID: "org-a", MetricID: "training_hours",
			Value: 5, Unit: "h", Year: 2025,
		}), ShouldBeNil)
		So(svc.AddDataPoint(ctx, model.MetricDataPoint{
			OrganizationID: "org-b", MetricID: "ghg_intensity",
			Value: 12, Unit: "tCO2e/$M", Year: 2025,
		}), ShouldBeNil)

		Convey("When comparing on the latest observations", func() {
			matrix, err := svc.CompareOrganizations(ctx, []string{"org-a", "org-b"}, []string{"ghg_intensity", "training_hours"}, 0)
			So(err, ShouldBeNil)

			Convey("Then missing observations stay nil, never zero", func() {
				So(*matrix["org-a"]["ghg_intensity"], ShouldEqual, 10)
				So(*matrix["org-a"]["training_hours"], ShouldEqual, 5)
				So(*matrix["org-b"]["ghg_intensity"], ShouldEqual, 12)
				So(matrix["org-b"]["training_hours"], ShouldBeNil)
			})
		})

		Convey("When comparing within a specific year", func() {
			matrix, err := svc.CompareOrganizations(ctx, []string{"org-a"}, []string{"ghg_intensity"}, 2024)
			So(err, ShouldBeNil)
			So(*matrix["org-a"]["ghg_intensity"], ShouldEqual, 8)
		})

		Convey("When an organization is listed more than once", func() {
			matrix, err := svc.CompareOrganizations(ctx, []string{"org-a", "org-a", "org-b", "org-a"}, []string{"ghg_intensity", "training_hours"}, 0)
			So(err, ShouldBeNil)

			Convey("Then duplicates collapse to a single row", func() {
				So(len(matrix), ShouldEqual, 2)
				So(*matrix["org-a"]["ghg_intensity"], ShouldEqual, 10)
				So(*matrix["org-a"]["training_hours"], ShouldEqual, 5)
				So(*matrix["org-b"]["ghg_intensity"], ShouldEqual, 12)
			})
		})

		Convey("When the year is negative", func() {
			_, err := svc.CompareOrganizations(ctx, []string{"org-a"}, []string{"ghg_intensity"}, -1)
			So(errors.Is(err, app.ErrInvalidFilter), ShouldBeTrue)
		})
	})
}
