package main

import (
	"context"
	"flag"

	"go.uber.org/zap"

	"github.com/currexhq/ledger/config"
	"github.com/currexhq/ledger/internal/adapter/binance"
	"github.com/currexhq/ledger/internal/adapter/cache"
	"github.com/currexhq/ledger/internal/adapter/in_memory"
	"github.com/currexhq/ledger/internal/adapter/pg"
	"github.com/currexhq/ledger/internal/api/http"
	"github.com/currexhq/ledger/internal/core"
	"github.com/currexhq/ledger/internal/middleware"
	"github.com/currexhq/ledger/internal/port"
)

func main() {
	configPath := flag.String("config", "config/config.yml", "path to yaml config")
	flag.Parse()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	repo, err := pg.NewRepository(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Fatal("connect postgres", zap.Error(err))
	}
	defer repo.Close()

	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatal("ensure schema", zap.Error(err))
	}

	var prices port.PriceSource
	prices, err = binance.NewPriceSource(cfg.Binance.APIKey, cfg.Binance.SecretKey, cfg.SpreadMarkup)
	if err != nil {
		log.Fatal("price source", zap.Error(err))
	}
	var priceCache port.PriceCache = in_memory.NewPriceCache(cfg.PriceTTL)
	if cfg.Redis.Enabled {
		priceCache = cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.PriceTTL)
	}
	prices = cache.NewCachedPriceSource(prices, priceCache, log)

	engine := core.NewEngine(repo, prices, cfg.Pairs, cfg.QuoteTTL, log)

	rl := middleware.NewRateLimiter(cfg.RateLimit)
	server := http.NewHTTPServer(engine, rl, log)

	log.Info("starting http server", zap.String("addr", cfg.Addr))
	if err := server.Run(cfg.Addr); err != nil {
		log.Fatal("http server", zap.Error(err))
	}
}
