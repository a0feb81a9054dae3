package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/questx-lab/discord-exporter/config"
	"github.com/questx-lab/discord-exporter/internal/domain"
	"github.com/questx-lab/discord-exporter/internal/gateway"
	"github.com/questx-lab/discord-exporter/internal/middleware"
	"github.com/questx-lab/discord-exporter/internal/repository"
	"github.com/questx-lab/discord-exporter/pkg/api/discord"
	"github.com/questx-lab/discord-exporter/pkg/logger"
	"github.com/questx-lab/discord-exporter/pkg/prometheus"
	"github.com/questx-lab/discord-exporter/pkg/router"
	"github.com/questx-lab/discord-exporter/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

type srv struct {
	ctx     context.Context
	configs *config.Configs

	statRepo  repository.StatRepository
	photoRepo repository.PhotoRepository

	endpoint discord.IEndpoint
	session  *gateway.Session

	syncDomain    domain.SyncDomain
	metricDomain  domain.MetricDomain
	feedDomain    domain.FeedDomain
	galleryDomain domain.GalleryDomain

	router *router.Router
}

func (s *srv) loadContext() {
	level := logger.INFO
	if s.configs.Env == "dev" {
		level = logger.DEBUG
	}

	s.ctx = context.Background()
	s.ctx = xcontext.WithConfigs(s.ctx, *s.configs)
	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(level))
}

func (s *srv) loadRepositories() {
	s.statRepo = repository.NewStatRepository()
	s.photoRepo = repository.NewPhotoRepository(s.configs.Gallery.WatchInterval)
}

func (s *srv) loadEndpoint() {
	s.endpoint = discord.New(s.configs.Discord)
}

func (s *srv) loadDomains() {
	s.syncDomain = domain.NewSyncDomain(s.statRepo, s.photoRepo, s.endpoint,
		func(err error) {
			// Without a resolvable guild there is nothing to serve.
			if errors.Is(err, domain.ErrGuildNotFound) {
				os.Exit(1)
			}
		})
	s.metricDomain = domain.NewMetricDomain(s.statRepo)
	s.feedDomain = domain.NewFeedDomain(s.statRepo)
	s.galleryDomain = domain.NewGalleryDomain(s.photoRepo)
}

func (s *srv) loadGateway() {
	s.session = gateway.NewSession(s.configs.Discord, s.syncDomain)
}

func (s *srv) loadRouter() {
	s.router = router.New(s.ctx)
	s.router.AddCloser(middleware.Logger())
	s.router.AddCloser(middleware.Prometheus())

	s.router.GETRaw("/", func(ctx context.Context, w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/" {
			http.NotFound(w, req)
			return
		}

		io.WriteString(w, "Hello! This is Discord Exporter.")
	})

	s.router.GETRaw("/metrics", func(ctx context.Context, w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=1.0.0")
		io.WriteString(w, s.metricDomain.Export(ctx))
	})

	s.router.GETRaw("/rss.xml", func(ctx context.Context, w http.ResponseWriter, req *http.Request) {
		rss, err := s.feedDomain.ExportRSS(ctx)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot render the rss feed: %v", err)
			http.Error(w, "cannot render the feed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/rss+xml")
		io.WriteString(w, rss)
	})

	s.router.GETRaw("/photos", func(ctx context.Context, w http.ResponseWriter, req *http.Request) {
		page, err := s.galleryDomain.RenderPage(ctx)
		if err != nil {
			http.Error(w, "cannot render the gallery", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, page)
	})

	router.GET(s.router, "/photos/latest-id", s.galleryDomain.Latest)

	promHandler := prometheus.NewHandler()
	s.router.GETRaw("/internal/metrics", func(ctx context.Context, w http.ResponseWriter, req *http.Request) {
		promHandler.ServeHTTP(w, req)
	})
}

func (s *srv) serve(*cli.Context) error {
	s.loadConfigs()
	s.loadContext()
	s.loadRepositories()
	s.loadEndpoint()
	s.loadDomains()
	s.loadGateway()
	s.loadRouter()

	ctx, stop := signal.NotifyContext(s.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go s.session.Run(ctx)

	httpServer := &http.Server{
		Addr:    s.configs.ApiServer.Address(),
		Handler: s.router.Handler(),
	}

	go func() {
		<-ctx.Done()
		httpServer.Shutdown(s.ctx)
	}()

	xcontext.Logger(s.ctx).Infof("Starting server on %s", s.configs.ApiServer.Address())
	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
