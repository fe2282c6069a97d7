package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/aanand-mishra/courses-api/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSetupLogger(t *testing.T) {
	Convey("Log levels follow the environment", t, func() {
		ctx := context.Background()
		So(setupLogger("dev").Enabled(ctx, slog.LevelDebug), ShouldBeTrue)
		So(setupLogger("staging").Enabled(ctx, slog.LevelDebug), ShouldBeTrue)
		So(setupLogger("prod").Enabled(ctx, slog.LevelDebug), ShouldBeFalse)
		So(setupLogger("prod").Enabled(ctx, slog.LevelInfo), ShouldBeTrue)
	})
}

func TestOpenStorage(t *testing.T) {
	Convey("Given a storage section", t, func() {
		ctx := context.Background()

		Convey("sqlite3 creates missing directories and opens the file", func() {
			dsn := filepath.Join(t.TempDir(), "nested", "courses.db")
			store, err := openStorage(ctx, config.Storage{Driver: config.DriverSQLite, DSN: dsn})
			So(err, ShouldBeNil)
			So(store.Ping(ctx), ShouldBeNil)
			So(store.Close(), ShouldBeNil)
		})

		Convey("An unknown driver is rejected", func() {
			store, err := openStorage(ctx, config.Storage{Driver: "mysql", DSN: "x"})
			So(err, ShouldNotBeNil)
			So(store, ShouldBeNil)
		})
	})
}
