package vector_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/lordwindy/samrena/pkg/arena"
	"github.com/lordwindy/samrena/pkg/arena/vector"
)

func TestIterator(t *testing.T) {
	Convey("Given a populated vector", t, func() {
		a, err := arena.NewDefault()
		So(err, ShouldBeNil)
		defer a.Close()

		v, err := vector.NewIn[int](a, 4)
		So(err, ShouldBeNil)
		for i := 1; i <= 5; i++ {
			_, err := v.Push(i)
			So(err, ShouldBeNil)
		}

		Convey("When walking it with a cursor", func() {
			it := v.Begin()

			var got []int
			for it.HasNext() {
				got = append(got, *it.Next())
			}

			So(got, ShouldResemble, []int{1, 2, 3, 4, 5})
			So(it.Next(), ShouldBeNil)

			Convey("Then Reset rewinds it", func() {
				it.Reset()
				So(it.HasNext(), ShouldBeTrue)
				So(*it.Next(), ShouldEqual, 1)
			})
		})

		Convey("When ranging over Values and All", func() {
			var got []int
			for x := range v.Values() {
				got = append(got, x)
			}
			So(got, ShouldResemble, []int{1, 2, 3, 4, 5})

			sum := 0
			for i, x := range v.All() {
				sum += i * x
			}
			So(sum, ShouldEqual, 0*1+1*2+2*3+3*4+4*5)
		})

		Convey("When using ForEach", func() {
			total := 0
			v.ForEach(func(p *int) { total += *p })
			So(total, ShouldEqual, 15)

			v.ForEach(nil) // no-op
		})
	})

	Convey("Given an empty vector", t, func() {
		a, err := arena.NewDefault()
		So(err, ShouldBeNil)
		defer a.Close()

		v, err := vector.NewIn[int](a, 4)
		So(err, ShouldBeNil)

		it := v.Begin()
		So(it.HasNext(), ShouldBeFalse)
		So(it.Next(), ShouldBeNil)
	})

	Convey("A nil vector iterates as empty", t, func() {
		var v *vector.Vector[int]

		it := v.Begin()
		So(it.HasNext(), ShouldBeFalse)

		v.ForEach(func(p *int) { panic("unreachable") })

		for range v.Values() {
			panic("unreachable")
		}
	})
}

func TestFilterMap(t *testing.T) {
	Convey("Given a vector of 1..10", t, func() {
		a, err := arena.NewDefault()
		So(err, ShouldBeNil)
		defer a.Close()

		v, err := vector.NewIn[int](a, 10)
		So(err, ShouldBeNil)
		for i := 1; i <= 10; i++ {
			_, err := v.Push(i)
			So(err, ShouldBeNil)
		}

		Convey("When filtering the even elements", func() {
			even, err := v.Filter(func(x int) bool { return x%2 == 0 }, a)
			So(err, ShouldBeNil)

			var got []int
			for x := range even.Values() {
				got = append(got, x)
			}
			So(got, ShouldResemble, []int{2, 4, 6, 8, 10})

			Convey("Then mapping them by ten", func() {
				scaled, err := vector.Map(even, func(x int) int { return x * 10 }, a)
				So(err, ShouldBeNil)

				var got []int
				for x := range scaled.Values() {
					got = append(got, x)
				}
				So(got, ShouldResemble, []int{20, 40, 60, 80, 100})
			})

			Convey("Then the source is unchanged", func() {
				So(v.Len(), ShouldEqual, 10)
				for i := 0; i < 10; i++ {
					got, err := v.Get(i)
					So(err, ShouldBeNil)
					So(got, ShouldEqual, i+1)
				}
			})
		})

		Convey("When mapping to a different element type", func() {
			doubled, err := vector.Map(v, func(x int) float64 { return float64(x) * 0.5 }, a)
			So(err, ShouldBeNil)

			got, err := doubled.Get(9)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, 5.0)
		})

		Convey("Nil arguments are rejected", func() {
			_, err := v.Filter(nil, a)
			So(err, ShouldWrap, arena.ErrNilPointer)

			_, err = v.Filter(func(int) bool { return true }, nil)
			So(err, ShouldWrap, arena.ErrNilPointer)

			_, err = vector.Map[int, int](nil, func(x int) int { return x }, a)
			So(err, ShouldWrap, arena.ErrNilPointer)
		})
	})
}
