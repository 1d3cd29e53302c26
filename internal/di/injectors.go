//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"ytstat/internal"
	"ytstat/internal/classifier"
	"ytstat/internal/controllers"
	"ytstat/internal/fetcher"
	"ytstat/internal/keypool"
	"ytstat/internal/providers"
	"ytstat/internal/services"
	"ytstat/internal/statistic"
	"ytstat/internal/statistic/interfaces"
	"ytstat/internal/structures"
	"ytstat/internal/targets"
	"ytstat/internal/youtube"
)

var youtubeSet = wire.NewSet(
	youtube.NewAPIClientFactory,
	wire.Bind(new(youtube.ClientFactory), new(*youtube.APIClientFactory)),
	youtube.NewFeedSource,
	wire.Bind(new(youtube.FeedSourceInterface), new(*youtube.FeedSource)),
	youtube.NewHandleResolver,
	wire.Bind(new(youtube.HandleResolverInterface), new(*youtube.HandleResolver)),
)

var storeSet = wire.NewSet(
	statistic.NewCompressor,
	statistic.NewBlobStore,
	statistic.NewSnapshotStore,
	wire.Bind(new(interfaces.SnapshotStoreInterface), new(*statistic.SnapshotStore)),
	statistic.NewDashboardWriter,
	wire.Bind(new(interfaces.DashboardWriterInterface), new(*statistic.DashboardWriter)),
	statistic.NewHistoryStoreFromConfig,
	wire.Bind(new(interfaces.HistoryStoreInterface), new(*statistic.HistoryStore)),
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		keypool.NewKeyPoolFromConfig,
		wire.Bind(new(keypool.KeyPoolInterface), new(*keypool.KeyPool)),
		wire.Bind(new(providers.KeyPoolStatus), new(*keypool.KeyPool)),

		youtubeSet,
		storeSet,
		classifier.NewClassifierFromConfig,
		fetcher.NewFetcher,
		targets.NewLoader,
		wire.Bind(new(targets.LoaderInterface), new(*targets.Loader)),
		services.NewCollectorService,
		wire.Bind(new(services.CollectorServiceInterface), new(*services.CollectorService)),
		statistic.NewScheduler,

		controllers.NewDashboardController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
