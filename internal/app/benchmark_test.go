package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	repository "github.com/okian/esgbench/internal/adapters/repository"
	"github.com/okian/esgbench/internal/app"
	"github.com/okian/esgbench/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// cohortValues is a 12-organization manufacturing cohort for
// ghg_intensity. The 50 is an obvious outlier; the IQR fences for the
// sorted set are [7.375, 16.375], so the cleaned sample has 11 values.
var cohortValues = []float64{10, 12, 11, 13, 9, 14, 10, 11, 12, 13, 50, 11}

func newService(opts ...app.Option) *app.Service {
	svc, err := app.New(opts...)
	So(err, ShouldBeNil)
	return svc
}

func seedGHGCohort(ctx context.Context, svc *app.Service) {
	for i, v := range cohortValues {
		org := fmt.Sprintf("org-%02d", i+1)
		_, err := svc.JoinNetwork(ctx, model.BenchmarkingProfile{
			OrganizationID: org,
			Industry:       "manufacturing",
			Size:           model.SizeMedium,
		}, model.PrivacySettings{})
		So(err, ShouldBeNil)
		So(svc.AddDataPoint(ctx, model.MetricDataPoint{
			OrganizationID: org,
			MetricID:       "ghg_intensity",
			Value:          v,
			Unit:           "tCO2e/$M",
			Year:           2025,
		}), ShouldBeNil)
	}
}

func TestCalculateBenchmark(t *testing.T) {
	ctx := context.Background()

	Convey("Given a manufacturing cohort with one outlier", t, func() {
		svc := newService()
		seedGHGCohort(ctx, svc)
		filter := model.Filter{Industry: "manufacturing"}

		Convey("When calculating the benchmark", func() {
			b, err := svc.CalculateBenchmark(ctx, "ghg_intensity", filter)
			So(err, ShouldBeNil)

			Convey("Then the outlier is excluded from the sample", func() {
				So(b.SampleSize, ShouldEqual, 11)
				So(b.Average, ShouldAlmostEqual, 126.0/11.0, 1e-9)
			})

			Convey("Then the percentiles interpolate linearly", func() {
				So(b.Percentiles.P10, ShouldAlmostEqual, 10, 1e-9)
				So(b.Percentiles.P25, ShouldAlmostEqual, 10.5, 1e-9)
				So(b.Percentiles.P50, ShouldAlmostEqual, 11, 1e-9)
				So(b.Percentiles.P75, ShouldAlmostEqual, 12.5, 1e-9)
				So(b.Percentiles.P90, ShouldAlmostEqual, 13, 1e-9)
				So(b.Percentiles.P95, ShouldAlmostEqual, 13.5, 1e-9)
			})

			Convey("Then leaders are pseudonymized, top 10 percent of the cohort", func() {
				So(len(b.Leaders), ShouldEqual, 2)
				for _, leader := range b.Leaders {
					So(leader, ShouldStartWith, "peer-")
				}
			})
		})

		Convey("When the same benchmark is requested twice", func() {
			b1, err := svc.CalculateBenchmark(ctx, "ghg_intensity", filter)
			So(err, ShouldBeNil)
			b2, err := svc.CalculateBenchmark(ctx, "ghg_intensity", filter)
			So(err, ShouldBeNil)

			Convey("Then the second response is served from cache", func() {
				So(b2.ComputedAt.Equal(b1.ComputedAt), ShouldBeTrue)
			})
		})

		Convey("When a point for another metric arrives", func() {
			b1, err := svc.CalculateBenchmark(ctx, "ghg_intensity", filter)
			So(err, ShouldBeNil)
			So(svc.AddDataPoint(ctx, model.MetricDataPoint{
				OrganizationID: "org-01",
				MetricID:       "water_consumption",
				Value:          400,
				Unit:           "m3",
				Year:           2025,
			}), ShouldBeNil)

			Convey("Then the cached benchmark is untouched", func() {
				b2, err := svc.CalculateBenchmark(ctx, "ghg_intensity", filter)
				So(err, ShouldBeNil)
				So(b2.ComputedAt.Equal(b1.ComputedAt), ShouldBeTrue)
			})
		})

		Convey("When a point for the same metric arrives", func() {
			b1, err := svc.CalculateBenchmark(ctx, "ghg_intensity", filter)
			So(err, ShouldBeNil)
			So(svc.AddDataPoint(ctx, model.MetricDataPoint{
				OrganizationID: "org-01",
				MetricID:       "ghg_intensity",
				Value:          11,
				Unit:           "tCO2e/$M",
				Year:           2025,
			}), ShouldBeNil)

			Convey("Then the benchmark is recomputed with the new observation", func() {
				b2, err := svc.CalculateBenchmark(ctx, "ghg_intensity", filter)
				So(err, ShouldBeNil)
				So(b2.SampleSize, ShouldEqual, b1.SampleSize+1)
			})
		})

		Convey("When the filter is malformed", func() {
			_, err := svc.CalculateBenchmark(ctx, "", filter)
			So(errors.Is(err, app.ErrInvalidFilter), ShouldBeTrue)
		})
	})
}

func TestBenchmarkGates(t *testing.T) {
	ctx := context.Background()

	Convey("Given a cohort below the minimum sample size", t, func() {
		svc := newService()
		for i := 0; i < 5; i++ {
			So(svc.AddDataPoint(ctx, model.MetricDataPoint{
				OrganizationID: fmt.Sprintf("org-%d", i),
				MetricID:       "ghg_intensity",
				Value:          float64(10 + i),
				Unit:           "tCO2e/$M",
				Year:           2025,
			}), ShouldBeNil)
		}

		Convey("Then no benchmark is released", func() {
			_, err := svc.CalculateBenchmark(ctx, "ghg_intensity", model.Filter{})
			So(errors.Is(err, app.ErrInsufficientData), ShouldBeTrue)
		})
	})

	Convey("Given a cohort member with a strict privacy threshold", t, func() {
		svc := newService()
		seedGHGCohort(ctx, svc)
		_, err := svc.JoinNetwork(ctx, model.BenchmarkingProfile{
			OrganizationID: "org-01",
			Industry:       "manufacturing",
			Size:           model.SizeMedium,
		}, model.PrivacySettings{AggregationThreshold: 50, Anonymize: true})
		So(err, ShouldBeNil)

		Convey("Then the strictest member blocks the release", func() {
			_, err := svc.CalculateBenchmark(ctx, "ghg_intensity", model.Filter{Industry: "manufacturing"})
			So(errors.Is(err, app.ErrInsufficientData), ShouldBeTrue)
		})
	})
}

func TestPercentileRank(t *testing.T) {
	ctx := context.Background()

	Convey("Given the manufacturing cohort", t, func() {
		svc := newService()
		seedGHGCohort(ctx, svc)
		filter := model.Filter{Industry: "manufacturing"}

		Convey("Then values map to the highest bucket they clear", func() {
			rank, err := svc.PercentileRank(ctx, "ghg_intensity", 14, filter)
			So(err, ShouldBeNil)
			So(rank, ShouldEqual, 95)

			rank, err = svc.PercentileRank(ctx, "ghg_intensity", 12, filter)
			So(err, ShouldBeNil)
			So(rank, ShouldEqual, 50)

			rank, err = svc.PercentileRank(ctx, "ghg_intensity", 9, filter)
			So(err, ShouldBeNil)
			So(rank, ShouldEqual, 5)
		})
	})
}

func TestImprovementPotential(t *testing.T) {
	ctx := context.Background()

	Convey("Given the manufacturing cohort", t, func() {
		svc := newService()
		seedGHGCohort(ctx, svc)
		filter := model.Filter{Industry: "manufacturing"}

		Convey("When targeting the median with a lower-is-better metric", func() {
			p, err := svc.ImprovementPotential(ctx, "ghg_intensity", 14, 50, filter)
			So(err, ShouldBeNil)

			Convey("Then the improvement is the distance still to cover", func() {
				So(p.TargetValue, ShouldAlmostEqual, 11, 1e-9)
				So(p.Improvement, ShouldAlmostEqual, 3, 1e-9)
				So(p.PercentageChange, ShouldAlmostEqual, 3.0/14.0*100, 1e-9)
			})
		})

		Convey("When the target percentile has no stored cut point", func() {
			_, err := svc.ImprovementPotential(ctx, "ghg_intensity", 14, 33, filter)
			So(errors.Is(err, app.ErrInvalidFilter), ShouldBeTrue)
		})
	})
}

func TestAddBulk(t *testing.T) {
	ctx := context.Background()

	Convey("Given a batch with one malformed record", t, func() {
		svc := newService()
		res := svc.AddBulk(ctx, []model.MetricDataPoint{
			{OrganizationID: "org-1", MetricID: "ghg_intensity", Value: 10, Unit: "tCO2e/$M", Year: 2025},
			{OrganizationID: "org-2", MetricID: "ghg_intensity", Value: 11, Year: 2025}, // no unit
			{OrganizationID: "org-3", MetricID: "ghg_intensity", Value: 12, Unit: "tCO2e/$M", Year: 2025},
		})

		Convey("Then the rest of the batch still lands", func() {
			So(res.Accepted, ShouldEqual, 2)
			So(res.Rejected, ShouldEqual, 1)
			So(len(res.Errors), ShouldEqual, 1)
			So(errors.Is(res.Errors[0], repository.ErrValidation), ShouldBeTrue)
		})
	})
}
