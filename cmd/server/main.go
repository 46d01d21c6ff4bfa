package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/zcombinatorio/swap-engine/internal/common"
	"github.com/zcombinatorio/swap-engine/internal/config"
	"github.com/zcombinatorio/swap-engine/internal/dex/cpamm"
	"github.com/zcombinatorio/swap-engine/internal/dex/dbc"
	httpservice "github.com/zcombinatorio/swap-engine/internal/http"
	"github.com/zcombinatorio/swap-engine/internal/http/middlewares"
	"github.com/zcombinatorio/swap-engine/internal/jupiter"
	"github.com/zcombinatorio/swap-engine/internal/services/builder"
	"github.com/zcombinatorio/swap-engine/internal/services/liquidity"
	"github.com/zcombinatorio/swap-engine/internal/services/market"
	"github.com/zcombinatorio/swap-engine/internal/services/quote"
	"github.com/zcombinatorio/swap-engine/internal/services/router"
	"github.com/zcombinatorio/swap-engine/internal/storage"
	memstore "github.com/zcombinatorio/swap-engine/internal/storage/memory"
	pgstore "github.com/zcombinatorio/swap-engine/internal/storage/postgres"
	redisstore "github.com/zcombinatorio/swap-engine/internal/storage/redis"
)

const (
	defaultCpAmmProgram = "cpamdpZCGKUy5JxQXB4dcpGPiikHawvSWAd6mEn1sGG"
	defaultDbcProgram   = "dbcij3LWUppWqq96dh6gJWwBifmcGfLSB5D4DuSMaqN"
)

func main() {
	_ = godotenv.Load()

	general := &config.GeneralConfig{}
	rpcConf := &config.RPCConfig{}
	routing := &config.RoutingConfig{}
	liqConf := &config.LiquidityConfig{}
	dbConf := &config.DatabaseConfig{}
	mktConf := &config.MarketConfig{}
	for _, c := range []interface{ Load() error }{general, rpcConf, routing, liqConf, dbConf, mktConf} {
		if err := c.Load(); err != nil {
			log.Fatal().Err(err).Msg("config load failed")
		}
	}
	if err := rpcConf.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation failed")
	}
	if err := dbConf.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation failed")
	}

	setupLogger(general.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rpcClient := rpc.New(rpcConf.RPCUrl)

	cpammProgram := mustProgramID(mktConf.CpAmmProgram, defaultCpAmmProgram)
	dbcProgram := mustProgramID(mktConf.DbcProgram, defaultDbcProgram)
	cpammClient := cpamm.NewClient(rpcClient, cpammProgram)
	dbcClient := dbc.NewClient(rpcClient, dbcProgram)

	registry, err := market.LoadRegistry(mktConf.MarketFile)
	if err != nil {
		log.Fatal().Err(err).Msg("market load failed")
	}
	resolver := market.NewResolver(registry, dbcClient, cpammProgram)
	finder := router.NewFinder(registry, routing.MaxHops)

	jupClient := jupiter.NewClient(routing.JupiterBaseURL, routing.JupiterAPIKey)
	engine := quote.NewEngine(finder, resolver,
		quote.NewDexQuoter(cpammClient, dbcClient), jupClient, routing.Strategy)

	blockhash := builder.NewBlockhashCache(rpcClient)

	var luts []solana.PublicKey
	if routing.LookupTable != "" {
		lut, err := solana.PublicKeyFromBase58(routing.LookupTable)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid LOOKUP_TABLE_ADDRESS")
		}
		luts = append(luts, lut)
	}
	lutManager := builder.NewLUTManager(rpcClient, luts, 5*time.Minute)
	lutManager.Start(ctx)

	executor := builder.NewExecutor(finder, resolver, cpammClient, dbcClient, rpcClient,
		blockhash, lutManager, liqConf.ConfirmAttempts, liqConf.ConfirmInterval)

	var signer solana.PrivateKey
	if routing.ExecutorKey != "" {
		signer, err = common.ParsePrivateKey(routing.ExecutorKey)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid EXECUTOR_PRIVATE_KEY")
		}
	}

	var keys storage.KeyStore
	if dbConf.PostgresDSN != "" {
		pg, err := pgstore.NewKeyStore(ctx, dbConf.PostgresDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("postgres keystore init failed")
		}
		defer pg.Close()
		keys = pg
	} else {
		mem, err := memstore.NewKeyStore(dbConf.Whitelist, dbConf.ManagerKey, dbConf.LPOwnerKey)
		if err != nil {
			log.Fatal().Err(err).Msg("memory keystore init failed")
		}
		keys = mem
	}

	var requests storage.RequestStore
	if liqConf.RedisURL != "" {
		rds, err := redisstore.NewRequestStore(liqConf.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("redis request store init failed")
		}
		defer rds.Close()
		requests = rds
	} else {
		mem := memstore.NewRequestStore()
		mem.StartSweeper(ctx, 5*time.Minute)
		requests = mem
	}

	liqService := liquidity.NewService(keys, requests, cpammClient, rpcClient, blockhash,
		jupClient, liqConf.RequestTTL, liqConf.ConfirmAttempts, liqConf.ConfirmInterval)

	limiter := middlewares.NewRateLimiter(liqConf.RateLimitBudget, liqConf.RateLimitWindow)

	server := httpservice.NewHTTPService(general,
		httpservice.NewQuoteHandler(registry, engine),
		httpservice.NewRouteHandler(registry, finder),
		httpservice.NewSwapHandler(registry, executor, signer),
		httpservice.NewLiquidityHandler(liqService, limiter),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		return server.Stop()
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}
}

func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(os.Stderr)
}

func mustProgramID(configured, fallback string) solana.PublicKey {
	raw := configured
	if raw == "" {
		raw = fallback
	}
	id, err := solana.PublicKeyFromBase58(raw)
	if err != nil {
		log.Fatal().Err(err).Str("programId", raw).Msg("invalid program id")
	}
	return id
}
