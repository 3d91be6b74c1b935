package catalog

import (
	"go.uber.org/fx"

	"github.com/halopax/unlockd/internal/catalog/repository"
	"github.com/halopax/unlockd/internal/catalog/service"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.New),
)
