package logger_test

import (
	"context"
	"testing"

	"github.com/okian/plaudit/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	Convey("Given an initialized global logger", t, func() {
		err := logger.Init()
		So(err, ShouldBeNil)

		Convey("When fetching the global instance", func() {
			l := logger.Get()

			Convey("Then it should accept structured fields without panicking", func() {
				So(func() {
					l.Info(context.Background(), "test message",
						logger.String("key", "value"),
						logger.Int("count", 3),
						logger.Bool("flag", true),
					)
				}, ShouldNotPanic)
			})

			Convey("And named loggers should be derivable", func() {
				named := l.Named("store")
				So(named, ShouldNotBeNil)
				So(func() {
					named.Debug(context.Background(), "nested", logger.Float64("v", 1.5))
				}, ShouldNotPanic)
			})
		})

		Convey("When setting levels by string", func() {
			Convey("Then known levels should parse", func() {
				So(logger.SetLevelString("debug"), ShouldBeNil)
				So(logger.SetLevelString("WARN"), ShouldBeNil)
				So(logger.SetLevelString(""), ShouldBeNil)
			})

			Convey("And unknown levels should be rejected", func() {
				So(logger.SetLevelString("verbose"), ShouldNotBeNil)
			})
		})

		Convey("When syncing", func() {
			So(logger.Sync(), ShouldBeNil)
		})
	})
}
