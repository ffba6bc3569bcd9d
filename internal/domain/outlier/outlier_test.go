package outlier

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCompute(t *testing.T) {
	Convey("Given two gaps", t, func() {
		gaps := []float64{55, 45}

		Convey("When computing bands", func() {
			b, err := Compute(gaps)

			Convey("Then the fast lap and quartiles match the reference values", func() {
				So(err, ShouldBeNil)
				So(b.FastLap, ShouldEqual, 90)
				So(b.Q1, ShouldEqual, 47.5)
				So(b.Q3, ShouldEqual, 52.5)
				So(b.Low, ShouldEqual, 40)
				So(b.High, ShouldEqual, 60)
				So(gaps, ShouldResemble, []float64{55, 45})
			})
		})
	})

	Convey("Given a longer series with one slow lap", t, func() {
		gaps := []float64{40, 42, 41, 43, 44, 120}

		Convey("When computing bands", func() {
			b, err := Compute(gaps)

			Convey("Then the quartiles interpolate between ranks", func() {
				So(err, ShouldBeNil)
				So(b.Q1, ShouldAlmostEqual, 41.25)
				So(b.Q3, ShouldAlmostEqual, 43.75)
				So(b.FastLap, ShouldEqual, 80)
			})

			Convey("Then only the slow lap is an outlier", func() {
				So(b.Classify(120).Outlier, ShouldBeTrue)
				So(b.Classify(42).Outlier, ShouldBeFalse)
			})

			Convey("Then laps under twice the fastest are flagged fast", func() {
				So(b.Classify(79).Fast, ShouldBeTrue)
				So(b.Classify(80).Fast, ShouldBeFalse)
			})
		})
	})

	Convey("Given fewer than two gaps", t, func() {
		for _, gaps := range [][]float64{nil, {50}} {
			_, err := Compute(gaps)
			So(errors.Is(err, ErrInsufficientData), ShouldBeTrue)
		}
	})
}

func TestPercentile(t *testing.T) {
	Convey("Given sorted values", t, func() {
		values := []float64{1, 2, 3, 4}

		Convey("Then the extremes and midpoints follow linear interpolation", func() {
			So(percentile(values, 0), ShouldEqual, 1)
			So(percentile(values, 100), ShouldEqual, 4)
			So(percentile(values, 50), ShouldEqual, 2.5)
			So(percentile(values, 25), ShouldEqual, 1.75)
		})
	})
}
