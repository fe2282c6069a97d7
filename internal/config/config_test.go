package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aanand-mishra/courses-api/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	Convey("Given a config file", t, func() {
		Convey("When it sets every section", func() {
			path := writeConfig(t, `
env: "prod"
storage:
  driver: "postgres"
  dsn: "host=db dbname=courses"
http_server:
  address: ":9000"
  read_timeout: 3s
  shutdown_timeout: 1s
`)
			cfg, err := config.Load(path)

			Convey("Then the values are read and defaults fill the rest", func() {
				So(err, ShouldBeNil)
				So(cfg.Env, ShouldEqual, "prod")
				So(cfg.Storage.Driver, ShouldEqual, config.DriverPostgres)
				So(cfg.Storage.DSN, ShouldEqual, "host=db dbname=courses")
				So(cfg.Addr, ShouldEqual, ":9000")
				So(cfg.ReadTimeout, ShouldEqual, 3*time.Second)
				So(cfg.WriteTimeout, ShouldEqual, 10*time.Second)
				So(cfg.IdleTimeout, ShouldEqual, 60*time.Second)
				So(cfg.ShutdownTimeout, ShouldEqual, time.Second)
			})
		})

		Convey("When the driver is omitted", func() {
			path := writeConfig(t, `
env: "dev"
storage:
  dsn: "courses.db"
http_server:
  address: "localhost:8082"
`)
			cfg, err := config.Load(path)

			Convey("Then sqlite3 is used", func() {
				So(err, ShouldBeNil)
				So(cfg.Storage.Driver, ShouldEqual, config.DriverSQLite)
			})
		})

		Convey("When an environment variable overrides a value", func() {
			t.Setenv("HTTP_SERVER_ADDR", ":7777")
			path := writeConfig(t, `
env: "dev"
storage:
  dsn: "courses.db"
http_server:
  address: "localhost:8082"
`)
			cfg, err := config.Load(path)

			Convey("Then the environment wins", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":7777")
			})
		})

		Convey("When the driver is unknown", func() {
			path := writeConfig(t, `
env: "dev"
storage:
  driver: "mysql"
  dsn: "x"
http_server:
  address: ":1"
`)
			_, err := config.Load(path)

			Convey("Then loading fails with ErrInvalidConfig", func() {
				So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
			})
		})

		Convey("When a required value is missing", func() {
			path := writeConfig(t, `
env: "dev"
http_server:
  address: ":1"
`)
			_, err := config.Load(path)

			Convey("Then loading fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})

	Convey("Given a path that does not exist", t, func() {
		_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))

		So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
	})
}
