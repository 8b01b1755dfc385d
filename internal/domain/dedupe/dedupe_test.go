package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	dedupe "github.com/okian/autograder/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new unbounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper()

		Convey("Then it should start empty", func() {
			So(d.Size(), ShouldEqual, 0)
		})

		Convey("When a key is claimed", func() {
			ok := d.Claim(ctx, "/projects/a")

			Convey("Then the caller should own it", func() {
				So(ok, ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And claimed again", func() {
				again := d.Claim(ctx, "/projects/a")

				Convey("Then the second claim should be refused", func() {
					So(again, ShouldBeFalse)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And released", func() {
				d.Release(ctx, "/projects/a")

				Convey("Then it can be claimed again", func() {
					So(d.Size(), ShouldEqual, 0)
					So(d.Claim(ctx, "/projects/a"), ShouldBeTrue)
				})
			})
		})

		Convey("When releasing an unknown key", func() {
			d.Release(ctx, "nobody")

			Convey("Then nothing should change", func() {
				So(d.Size(), ShouldEqual, 0)
			})
		})
	})

	Convey("Given a deduper bounded to two claims", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(2))
		So(d.Claim(ctx, "a"), ShouldBeTrue)
		So(d.Claim(ctx, "b"), ShouldBeTrue)

		Convey("Then a third key should be refused until one is released", func() {
			So(d.Claim(ctx, "c"), ShouldBeFalse)
			d.Release(ctx, "a")
			So(d.Claim(ctx, "c"), ShouldBeTrue)
			So(d.Size(), ShouldEqual, 2)
		})
	})

	Convey("Given many goroutines racing for the same keys", t, func() {
		d := dedupe.NewInMemoryDeduper()
		var won atomic.Int64
		var wg sync.WaitGroup
		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				if d.Claim(ctx, fmt.Sprintf("key-%d", i%10)) {
					won.Add(1)
				}
			}(i)
		}
		wg.Wait()

		Convey("Then each key should be won exactly once", func() {
			So(won.Load(), ShouldEqual, 10)
			So(d.Size(), ShouldEqual, 10)
		})
	})
}
