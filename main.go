package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rudderlabs/rudder-go-kit/config"
	kithttputil "github.com/rudderlabs/rudder-go-kit/httputil"
	"github.com/rudderlabs/rudder-go-kit/logger"
	obskit "github.com/rudderlabs/rudder-observability-kit/go/labels"

	"github.com/mickamy/jsonapi-hydrator/jsonapi"
	"github.com/mickamy/jsonapi-hydrator/orm"
	"github.com/mickamy/jsonapi-hydrator/queue"
	"github.com/mickamy/jsonapi-hydrator/server"
)

var version = "dev"

type settings struct {
	baseURL     string
	pathPrefix  string
	webPort     int
	driver      string
	dsn         string
	debug       bool
	readTimeout time.Duration
}

func loadSettings(conf *config.Config) settings {
	return settings{
		baseURL:     conf.GetString("JSONAPI.baseURL", "http://localhost"),
		pathPrefix:  conf.GetString("JSONAPI.pathPrefix", "/api/v1"),
		webPort:     conf.GetInt("JSONAPI.webPort", 8080),
		driver:      conf.GetString("DB.driver", "pgx"),
		dsn:         conf.GetString("DB.dsn", ""),
		debug:       conf.GetBool("DB.debug", false),
		readTimeout: conf.GetDuration("HTTP.readTimeout", 10, time.Second),
	}
}

// links are absolute and rooted at the public base URL plus the prefix.
func (s settings) urls() jsonapi.URLs {
	return jsonapi.NewURLs(s.baseURL + s.pathPrefix)
}

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("jsonapi-hydrator", version)
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log := logger.NewLogger().Child("main")
	if err := run(ctx, config.New(), log); err != nil {
		log.Errorn("server stopped", obskit.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, conf *config.Config, log logger.Logger) error {
	s := loadSettings(conf)
	if s.dsn == "" {
		return errors.New("DB.dsn is required")
	}

	db, err := orm.Open(s.driver, s.dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	if s.debug {
		db = db.Debug(orm.KitLogger{L: logger.NewLogger().Child("sql")})
	}
	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	h := server.NewHandler(queue.NewSQLStore(db), s.urls(), logger.NewLogger().Child("server"))
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.webPort),
		Handler:           server.New(h, s.pathPrefix),
		ReadHeaderTimeout: s.readTimeout,
	}

	log.Infon("starting server",
		logger.NewIntField("port", int64(s.webPort)),
		logger.NewStringField("driver", s.driver),
		logger.NewStringField("version", version),
	)
	return kithttputil.ListenAndServe(ctx, srv) //nolint:wrapcheck // pass through
}
