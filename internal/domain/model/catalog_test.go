package model_test

import (
	"testing"

	model "github.com/okian/esgbench/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLowerIsBetter(t *testing.T) {
	Convey("Given the metric catalog", t, func() {
		Convey("When the metric has an explicit catalog entry", func() {
			Convey("Then the entry's direction wins", func() {
				So(model.LowerIsBetter("ghg_intensity"), ShouldBeTrue)
				So(model.LowerIsBetter("incident_rate"), ShouldBeTrue)
				So(model.LowerIsBetter("renewable_energy_share"), ShouldBeFalse)
				So(model.LowerIsBetter("training_hours"), ShouldBeFalse)
			})
		})

		Convey("When the metric is not cataloged", func() {
			Convey("Then the substring heuristic applies", func() {
				So(model.LowerIsBetter("fleet_emissions_total"), ShouldBeTrue)
				So(model.LowerIsBetter("hazardous_waste_tonnes"), ShouldBeTrue)
				So(model.LowerIsBetter("chemical_spill_count"), ShouldBeTrue)
				So(model.LowerIsBetter("employee_satisfaction"), ShouldBeFalse)
			})
		})

		Convey("When the metric ID uses mixed case", func() {
			So(model.LowerIsBetter("Fleet_Emissions"), ShouldBeTrue)
		})
	})
}

func TestLookup(t *testing.T) {
	Convey("Given the metric catalog", t, func() {
		Convey("When looking up a known metric", func() {
			info, ok := model.Lookup("water_consumption")
			So(ok, ShouldBeTrue)
			So(info.Unit, ShouldEqual, "m3")
			So(info.LowerBetter, ShouldBeTrue)
		})

		Convey("When looking up an unknown metric", func() {
			_, ok := model.Lookup("nope")
			So(ok, ShouldBeFalse)
		})
	})
}
