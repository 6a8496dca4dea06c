package di

import (
	"fmt"

	domrepo "CandlePull/internal/domain/repository"
	"CandlePull/internal/handler/api"
	mid "CandlePull/internal/middleware"
	internalrepo "CandlePull/internal/repository"
	"CandlePull/internal/service/binance"
	"CandlePull/internal/usecase"
	pkgcache "CandlePull/pkg/cache"
	"CandlePull/pkg/config"
	xhttp "CandlePull/pkg/http"
	pkgkafka "CandlePull/pkg/kafka"
	"CandlePull/pkg/logger"
	"CandlePull/pkg/metrics"
	"CandlePull/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	l, err := logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.WithCollector(logger.NewErrorCollector(100)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideBarStore opens the embedded SQLite bar store.
func ProvideBarStore(cfg *config.Config) (domrepo.BarStore, error) {
	store, err := internalrepo.NewSQLiteBarStore(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("bar store: %w", err)
	}
	return store, nil
}

// ProvideBarPublisher creates the optional Kafka bar fan-out.
func ProvideBarPublisher(cfg *config.Config) (domrepo.BarPublisher, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithBatchSize(cfg.Kafka.BatchSize),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.ReadTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaBarPublisher(producer, cfg.Kafka.Topic), nil
}

// ProvideAggregator creates the bar aggregator for the configured intervals.
func ProvideAggregator(cfg *config.Config, store domrepo.BarStore, publisher domrepo.BarPublisher, l *logger.Logger) *usecase.Aggregator {
	intervals := make([]domrepo.Interval, 0, len(cfg.Bars.Intervals))
	for _, s := range cfg.Bars.Intervals {
		intervals = append(intervals, domrepo.Interval(s))
	}
	return usecase.NewAggregator(store, publisher, intervals, l)
}

// ProvideIngestPipeline creates the validation pipeline in front of the
// aggregator.
func ProvideIngestPipeline(agg *usecase.Aggregator, m domrepo.Metrics) *mid.IngestPipeline {
	return mid.NewIngestPipeline(agg, m)
}

// binanceStreamFactory builds the real transports from config.
type binanceStreamFactory struct {
	cfg *config.Config
	l   *logger.Logger
}

func (f *binanceStreamFactory) NewWS(failFast bool) domrepo.BarStream {
	return binance.NewWSStreamer(f.cfg.Binance.WebSocketURL, f.cfg.Binance.Symbols, failFast, f.l)
}

func (f *binanceStreamFactory) NewREST() domrepo.BarStream {
	return binance.NewRESTPoller(f.cfg.Binance.RestURL, f.cfg.Binance.Symbols, f.cfg.Binance.RestPollSeconds, f.l)
}

// ProvideStreamFactory creates the Binance transport factory.
func ProvideStreamFactory(cfg *config.Config, l *logger.Logger) usecase.StreamFactory {
	return &binanceStreamFactory{cfg: cfg, l: l}
}

// ProvideSupervisor creates the streaming supervisor.
func ProvideSupervisor(cfg *config.Config, factory usecase.StreamFactory, pipeline *mid.IngestPipeline, m domrepo.Metrics, l *logger.Logger) *usecase.Supervisor {
	return usecase.NewSupervisor(cfg.Binance.Transport, factory, pipeline, m, l)
}

// ProvideSignalCache creates the optional signal response cache.
func ProvideSignalCache(cfg *config.Config) (pkgcache.Service, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	if !cfg.Cache.Redis.Enabled {
		return pkgcache.NewMemoryCache(), nil
	}
	redisCache, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(cfg.Cache.Redis.Host),
		pkgcache.WithRedisPort(cfg.Cache.Redis.Port),
		pkgcache.WithRedisPassword(cfg.Cache.Redis.Password),
		pkgcache.WithRedisDB(cfg.Cache.Redis.DB),
		pkgcache.WithRedisPrefix("candlepull"),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return pkgcache.NewLayeredCache(redisCache), nil
}

// ProvideBarsUseCase creates the bars read use case.
func ProvideBarsUseCase(store domrepo.BarStore) *usecase.BarsUseCase {
	return usecase.NewBarsUseCase(store)
}

// ProvideMetaUseCase creates the instruments metadata use case.
func ProvideMetaUseCase(store domrepo.BarStore) *usecase.MetaUseCase {
	return usecase.NewMetaUseCase(store)
}

// ProvideSignalUseCase creates the signal engine use case.
func ProvideSignalUseCase(cfg *config.Config, store domrepo.BarStore, l *logger.Logger, signalCache pkgcache.Service) *usecase.SignalUseCase {
	uc := usecase.NewSignalUseCase(store, l)
	if signalCache != nil {
		uc = uc.WithCache(signalCache, cfg.Cache.TTL)
	}
	return uc
}

// ProvideHandler binds the HTTP API handler.
func ProvideHandler(
	cfg *config.Config,
	l *logger.Logger,
	bars *usecase.BarsUseCase,
	meta *usecase.MetaUseCase,
	signal *usecase.SignalUseCase,
	supervisor *usecase.Supervisor,
) xhttp.Handler {
	return api.NewMarketEchoHandler(l, bars, meta, signal, supervisor, api.ProviderInfo{
		Enabled:         cfg.Providers,
		Transport:       cfg.Binance.Transport,
		Symbols:         cfg.SymbolsUpper(),
		RestPollSeconds: cfg.Binance.RestPollSeconds,
	})
}

// ProvideApp creates the application.
func ProvideApp(
	cfg *config.Config,
	store domrepo.BarStore,
	supervisor *usecase.Supervisor,
	publisher domrepo.BarPublisher,
	handler xhttp.Handler,
	l *logger.Logger,
) *server.App {
	return server.New(cfg, store, supervisor, publisher, handler, l)
}
