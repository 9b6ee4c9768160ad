package cache_test

import (
	"context"
	"testing"

	cache "github.com/okian/esgbench/internal/adapters/cache"
	"github.com/okian/esgbench/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestKey(t *testing.T) {
	Convey("Given filter tuples", t, func() {
		Convey("Then empty fields fall back to their defaults", func() {
			So(cache.Key("ghg_intensity", model.Filter{}),
				ShouldEqual, "ghg_intensity|all|global|latest|all")
		})

		Convey("Then populated fields are encoded in order", func() {
			f := model.Filter{Industry: "manufacturing", Region: "eu", Year: 2024, Size: model.SizeLarge}
			So(cache.Key("ghg_intensity", f),
				ShouldEqual, "ghg_intensity|manufacturing|eu|2024|large")
		})

		Convey("Then verified-only filters get their own key space", func() {
			f := model.Filter{VerifiedOnly: true}
			So(cache.Key("m", f), ShouldEndWith, "|verified")
		})
	})
}

func TestBenchmarkCache(t *testing.T) {
	ctx := context.Background()

	bench := func(metric string) model.IndustryBenchmark {
		return model.IndustryBenchmark{MetricID: metric, SampleSize: 12, Average: 11.5}
	}

	Convey("Given a cache with entries for two metrics", t, func() {
		c, err := cache.New(cache.WithSize(64))
		So(err, ShouldBeNil)

		keyA1 := cache.Key("metricA", model.Filter{Industry: "manufacturing", Year: 2024})
		keyA2 := cache.Key("metricA", model.Filter{Industry: "energy"})
		keyB := cache.Key("metricB", model.Filter{})

		c.Put(ctx, keyA1, bench("metricA"))
		c.Put(ctx, keyA2, bench("metricA"))
		c.Put(ctx, keyB, bench("metricB"))
		So(c.Len(ctx), ShouldEqual, 3)

		Convey("When invalidating metricA", func() {
			So(c.Invalidate(ctx, "metricA"), ShouldEqual, 2)

			Convey("Then every metricA entry is gone", func() {
				_, ok := c.Get(ctx, keyA1)
				So(ok, ShouldBeFalse)
				_, ok = c.Get(ctx, keyA2)
				So(ok, ShouldBeFalse)
			})

			Convey("Then metricB's entry is untouched", func() {
				got, ok := c.Get(ctx, keyB)
				So(ok, ShouldBeTrue)
				So(got.MetricID, ShouldEqual, "metricB")
			})
		})

		Convey("When invalidating a metric with no entries", func() {
			So(c.Invalidate(ctx, "metricC"), ShouldEqual, 0)
			So(c.Len(ctx), ShouldEqual, 3)
		})

		Convey("When a key is overwritten", func() {
			updated := bench("metricA")
			updated.Average = 99
			c.Put(ctx, keyA1, updated)

			got, ok := c.Get(ctx, keyA1)
			So(ok, ShouldBeTrue)
			So(got.Average, ShouldEqual, 99)
			So(c.Len(ctx), ShouldEqual, 3)
		})
	})

	Convey("Given a tiny cache under pressure", t, func() {
		c, err := cache.New(cache.WithSize(2))
		So(err, ShouldBeNil)

		for i, metric := range []string{"m1", "m2", "m3"} {
			f := model.Filter{Year: 2020 + i}
			c.Put(ctx, cache.Key(metric, f), bench(metric))
		}

		Convey("Then LRU eviction keeps the cache bounded", func() {
			So(c.Len(ctx), ShouldEqual, 2)
		})

		Convey("Then invalidating an already-evicted metric is a no-op", func() {
			So(c.Invalidate(ctx, "m1"), ShouldEqual, 0)
		})
	})
}
