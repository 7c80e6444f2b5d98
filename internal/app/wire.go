//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"github.com/amaumene/whirlwatch/internal/config"
	"github.com/amaumene/whirlwatch/internal/controllers"
	"github.com/amaumene/whirlwatch/internal/metrics"
	"github.com/amaumene/whirlwatch/internal/services/whirlwatch"
	"github.com/amaumene/whirlwatch/internal/session"
	"github.com/amaumene/whirlwatch/internal/stats"
)

var backendSet = wire.NewSet(
	whirlwatch.OptionsFromConfig,
	whirlwatch.NewTransport,
	whirlwatch.NewAuthClient,
	whirlwatch.NewClient,
	session.NewProvider,
	wire.Bind(new(session.Authenticator), new(*whirlwatch.AuthClient)),
	wire.Bind(new(whirlwatch.SessionProvider), new(*session.Provider)),
	wire.Bind(new(controllers.Backend), new(*whirlwatch.Client)),
	wire.Bind(new(controllers.CollectionSource), new(*whirlwatch.Client)),
)

var viewSet = wire.NewSet(
	ProvideViewModel,
	stats.NewAggregator,
	ProvideMutator,
	controllers.NewLoader,
)

// InitializeApp builds the application from its configuration
func InitializeApp(cfg *config.Config) (*App, func(), error) {
	wire.Build(
		ProvideLogger,
		ProvideDatabase,
		ProvideTracerProvider,
		ProvideTracer,
		metrics.New,
		backendSet,
		viewSet,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}
