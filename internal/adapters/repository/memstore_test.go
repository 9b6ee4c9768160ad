package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	repository "github.com/okian/esgbench/internal/adapters/repository"
	"github.com/okian/esgbench/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func point(org string, value float64, year int) model.MetricDataPoint {
	return model.MetricDataPoint{
		OrganizationID: org,
		MetricID:       "ghg_intensity",
		Value:          value,
		Unit:           "tCO2e/$M",
		Year:           year,
	}
}

func TestMemStoreAdd(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty store", t, func() {
		store := repository.NewMemStore(repository.WithShardCount(4))

		Convey("When adding a valid point", func() {
			So(store.Add(ctx, point("org-1", 12.5, 2024)), ShouldBeNil)

			Convey("Then it is queryable", func() {
				pts := store.Points(ctx, "ghg_intensity", repository.Query{Year: 2024})
				So(len(pts), ShouldEqual, 1)
				So(pts[0].Value, ShouldEqual, 12.5)
			})
		})

		Convey("When the metric ID is missing", func() {
			p := point("org-1", 1, 2024)
			p.MetricID = ""
			err := store.Add(ctx, p)
			So(errors.Is(err, repository.ErrValidation), ShouldBeTrue)

			var verr *repository.ValidationError
			So(errors.As(err, &verr), ShouldBeTrue)
			So(verr.Field, ShouldEqual, "metric_id")
		})

		Convey("When the unit is missing", func() {
			p := point("org-1", 1, 2024)
			p.Unit = ""
			So(errors.Is(store.Add(ctx, p), repository.ErrValidation), ShouldBeTrue)
		})

		Convey("When the value is negative", func() {
			So(errors.Is(store.Add(ctx, point("org-1", -3, 2024)), repository.ErrValidation), ShouldBeTrue)
		})

		Convey("When a verified point has no methodology", func() {
			p := point("org-1", 1, 2024)
			p.Verified = true
			err := store.Add(ctx, p)
			So(errors.Is(err, repository.ErrValidation), ShouldBeTrue)

			Convey("And passes once a methodology is attached", func() {
				p.Methodology = "GHG Protocol"
				So(store.Add(ctx, p), ShouldBeNil)
			})
		})
	})
}

func TestMemStoreAddBulk(t *testing.T) {
	ctx := context.Background()

	Convey("Given a batch with one bad record", t, func() {
		store := repository.NewMemStore()
		batch := []model.MetricDataPoint{
			point("org-1", 10, 2024),
			point("org-2", -1, 2024), // rejected: negative
			point("org-3", 12, 2024),
		}

		Convey("Then the batch partially succeeds", func() {
			res := store.AddBulk(ctx, batch)
			So(res.Accepted, ShouldEqual, 2)
			So(res.Rejected, ShouldEqual, 1)
			So(len(res.Errors), ShouldEqual, 1)

			pts := store.Points(ctx, "ghg_intensity", repository.Query{})
			So(len(pts), ShouldEqual, 2)
		})
	})
}

func TestMemStoreQueries(t *testing.T) {
	ctx := context.Background()

	Convey("Given points across years, regions and verification states", t, func() {
		store := repository.NewMemStore()

		verified := point("org-1", 10, 2024)
		verified.Verified = true
		verified.Methodology = "GHG Protocol"
		So(store.Add(ctx, verified), ShouldBeNil)

		eu := point("org-2", 11, 2024)
		eu.Region = "eu"
		So(store.Add(ctx, eu), ShouldBeNil)

		So(store.Add(ctx, point("org-3", 9, 2023)), ShouldBeNil)

		Convey("Then year filters apply", func() {
			So(len(store.Points(ctx, "ghg_intensity", repository.Query{Year: 2024})), ShouldEqual, 2)
			So(len(store.Points(ctx, "ghg_intensity", repository.Query{Year: 2023})), ShouldEqual, 1)
		})

		Convey("Then region filters apply", func() {
			pts := store.Points(ctx, "ghg_intensity", repository.Query{Region: "eu"})
			So(len(pts), ShouldEqual, 1)
			So(pts[0].OrganizationID, ShouldEqual, "org-2")
		})

		Convey("Then verified-only filters apply", func() {
			pts := store.Points(ctx, "ghg_intensity", repository.Query{VerifiedOnly: true})
			So(len(pts), ShouldEqual, 1)
			So(pts[0].OrganizationID, ShouldEqual, "org-1")
		})

		Convey("Then organization set filters apply", func() {
			q := repository.Query{Organizations: map[string]struct{}{"org-2": {}}}
			So(len(store.Points(ctx, "ghg_intensity", q)), ShouldEqual, 1)
		})

		Convey("Then counts roll up across shards", func() {
			total, ver := store.Counts(ctx)
			So(total, ShouldEqual, 3)
			So(ver, ShouldEqual, 1)
		})
	})
}

func TestMemStoreLatestAndHistory(t *testing.T) {
	ctx := context.Background()

	Convey("Given several observations over time for one organization", t, func() {
		store := repository.NewMemStore()
		base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

		for i, v := range []float64{20, 18, 15} {
			p := point("org-1", v, 2022+i)
			p.RecordedAt = base.AddDate(0, i, 0)
			So(store.Add(ctx, p), ShouldBeNil)
		}

		Convey("Then LatestFor returns the newest point", func() {
			latest, err := store.LatestFor(ctx, "org-1", "ghg_intensity")
			So(err, ShouldBeNil)
			So(latest.Value, ShouldEqual, 15)
		})

		Convey("Then History is ordered oldest first", func() {
			h := store.History(ctx, "org-1", "ghg_intensity")
			So(len(h), ShouldEqual, 3)
			So(h[0].Value, ShouldEqual, 20)
			So(h[2].Value, ShouldEqual, 15)
		})

		Convey("Then an unknown pair yields ErrNotFound", func() {
			_, err := store.LatestFor(ctx, "org-9", "ghg_intensity")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestMemProfileStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given a profile store", t, func() {
		store := repository.NewMemProfileStore()

		profile := model.BenchmarkingProfile{
			OrganizationID:     "org-1",
			Industry:           "manufacturing",
			Size:               model.SizeMedium,
			ParticipationLevel: model.ParticipationStandard,
		}

		Convey("When registering a profile", func() {
			So(store.Put(ctx, profile, model.PrivacySettings{Anonymize: true, AggregationThreshold: 8}), ShouldBeNil)

			Convey("Then it round-trips", func() {
				got, err := store.Get(ctx, "org-1")
				So(err, ShouldBeNil)
				So(got.Industry, ShouldEqual, "manufacturing")

				privacy, err := store.Privacy(ctx, "org-1")
				So(err, ShouldBeNil)
				So(privacy.AggregationThreshold, ShouldEqual, 8)
			})

			Convey("Then membership queries see it", func() {
				So(store.Count(ctx), ShouldEqual, 1)
				So(store.Industries(ctx)["manufacturing"], ShouldEqual, 1)
				So(store.Members(ctx, "manufacturing", model.SizeMedium), ShouldContainKey, "org-1")
				So(store.Members(ctx, "manufacturing", model.SizeLarge), ShouldBeEmpty)
			})
		})

		Convey("When the profile is incomplete", func() {
			bad := profile
			bad.Industry = ""
			So(errors.Is(store.Put(ctx, bad, model.PrivacySettings{}), repository.ErrValidation), ShouldBeTrue)
		})

		Convey("When the organization is unknown", func() {
			_, err := store.Get(ctx, "org-9")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})
}
