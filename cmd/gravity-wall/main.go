package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/gravity-wall/audio"
	"github.com/lixenwraith/gravity-wall/config"
	"github.com/lixenwraith/gravity-wall/constant"
	"github.com/lixenwraith/gravity-wall/core"
	"github.com/lixenwraith/gravity-wall/engine"
	"github.com/lixenwraith/gravity-wall/feed"
	"github.com/lixenwraith/gravity-wall/input"
	"github.com/lixenwraith/gravity-wall/metrics"
	"github.com/lixenwraith/gravity-wall/physics"
	"github.com/lixenwraith/gravity-wall/render"
	"github.com/lixenwraith/gravity-wall/texture"
)

var (
	configFlag  = flag.String("config", "", "Path to YAML config file")
	feedFlag    = flag.String("feed", "", "Feed id to subscribe to")
	sourceFlag  = flag.String("source", "", "Feed source: none, memory, websocket, redis")
	urlFlag     = flag.String("url", "", "Websocket relay URL")
	redisFlag   = flag.String("redis", "", "Redis address for the redis source")
	demoFlag    = flag.Bool("demo", false, "Simulate guest uploads on an in-process feed")
	soundFlag   = flag.Bool("sound", false, "Play a chime when a photo lands")
	metricsFlag = flag.String("metrics", "", "Listen address for /metrics and /scale (empty disables)")
	logFlag     = flag.String("log", "", "Log file path")
)

func main() {
	// Panic Recovery: Ensure terminal is reset even if the wall crashes
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, closeLog, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "log: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if err := run(cfg, log); err != nil {
		log.WithError(err).Error("wall stopped")
		fmt.Fprintf(os.Stderr, "gravity-wall: %v\n", err)
		os.Exit(1)
	}
}

// applyFlags overrides config values with flags given on the command line
func applyFlags(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "feed":
			cfg.Feed.ID = *feedFlag
		case "source":
			cfg.Feed.Source = *sourceFlag
		case "url":
			cfg.Feed.URL = *urlFlag
		case "redis":
			cfg.Feed.RedisAddr = *redisFlag
		case "sound":
			cfg.Sound = *soundFlag
		case "metrics":
			cfg.Metrics.Addr = *metricsFlag
		case "log":
			cfg.Log.File = *logFlag
		case "demo":
			if *demoFlag {
				cfg.Feed.Source = config.SourceMemory
			}
		}
	})
}

// newLogger writes to a file; the terminal belongs to the wall
func newLogger(cfg config.LogConfig) (*logrus.Entry, func(), error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	logger.SetLevel(level)

	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	logger.SetOutput(f)
	return logrus.NewEntry(logger).WithField("app", "gravity-wall"), func() { f.Close() }, nil
}

func run(cfg *config.Config, log *logrus.Entry) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline, err := newPipeline(cfg.Texture, log.WithField("component", "texture"))
	if err != nil {
		return err
	}

	source, closeSource := newSource(cfg.Feed, log.WithField("component", "feed"))
	defer closeSource()

	if mem, ok := source.(*feed.MemorySource); ok {
		demo := feed.NewDemo(mem, cfg.Feed.ID, cfg.Fallback.Placeholders, constant.DemoUploadInterval)
		core.Go(func() {
			_ = demo.Run(ctx)
		})
	}

	fallback := feed.NewFallback(cfg.Fallback.Placeholders, cfg.Fallback.Count, cfg.Fallback.Interval,
		log.WithField("component", "fallback"))
	subscriber := feed.NewSubscriber(source, cfg.Feed.ID, cfg.Feed.Limit, fallback, log.WithField("component", "subscriber"))

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal init: %w", err)
	}
	core.SetTerminalReset(screen.Fini)
	defer screen.Fini()
	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.HideCursor()

	chime := audio.NewChime(cfg.Sound, log.WithField("component", "audio"))
	defer chime.Close()

	collector := metrics.NewCollector("")
	collector.WatchPipeline("", pipeline)

	wall := engine.NewWall(engine.Options{
		World:    physics.NewWorld(cfg.Wall.InitialScale, log.WithField("component", "physics")),
		Factory:  physics.NewFactory(cfg.Wall.Seed),
		Acquirer: pipeline,
		Renderer: render.NewRenderer(screen, cfg.Wall.UnitsPerPixel),
		Observer: collector,
		Notifier: chime,
		Fallback: subscriber.FallbackActive,
		Log:      log.WithField("component", "wall"),
	})
	defer wall.Close()

	cols, rows := screen.Size()
	wall.HandleEvent(engine.ResizeEvent{Cols: cols, Rows: rows})

	if cfg.Metrics.Addr != "" {
		metrics.NewServer(cfg.Metrics.Addr, collector, wall, log.WithField("component", "http")).Start(ctx)
	}

	items := make(chan feed.Item, constant.FeedBufferSize)
	core.Go(func() {
		_ = subscriber.Run(ctx, items)
	})

	events := make(chan engine.Event, constant.EventBufferSize)
	translator := input.NewTranslator()
	// Input polling interacts directly with the terminal; it ends when the screen is finalized
	core.Go(func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			if out, ok := translator.Translate(ev); ok {
				select {
				case events <- out:
				case <-ctx.Done():
					return
				}
			}
		}
	})

	log.WithFields(logrus.Fields{
		"feed":   cfg.Feed.ID,
		"source": cfg.Feed.Source,
		"cols":   cols,
		"rows":   rows,
	}).Info("wall started")

	if err := wall.Run(ctx, items, events); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func newPipeline(cfg config.TextureConfig, log *logrus.Entry) (*texture.Pipeline, error) {
	mux := texture.NewMuxFetcher()
	mux.Handle(texture.NewHTTPFetcher(cfg.FetchTimeout, cfg.RateLimit, cfg.Burst, cfg.MaxBytes), "http", "https")
	mux.Handle(texture.PlaceholderFetcher{}, "placeholder")

	if cfg.S3.Endpoint != "" {
		s3, err := texture.NewS3Fetcher(texture.S3Config{
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			UseSSL:    cfg.S3.UseSSL,
		}, cfg.MaxBytes)
		if err != nil {
			return nil, err
		}
		mux.Handle(s3, "s3")
	}

	normalizer := texture.NewWebPNormalizer(cfg.Width, cfg.Height, cfg.Quality)
	return texture.NewPipeline(mux, normalizer, log), nil
}

// newSource returns nil for the "none" source, which sends the subscriber straight to fallback
func newSource(cfg config.FeedConfig, log *logrus.Entry) (feed.Source, func()) {
	switch cfg.Source {
	case config.SourceWebsocket:
		return feed.NewWebsocketSource(cfg.URL, log), func() {}
	case config.SourceRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return feed.NewRedisSource(client, log), func() { client.Close() }
	case config.SourceMemory:
		return feed.NewMemorySource(), func() {}
	default:
		return nil, func() {}
	}
}
