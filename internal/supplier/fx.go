package supplier

import (
	"go.uber.org/fx"

	"github.com/halopax/unlockd/internal/supplier/gateway"
	"github.com/halopax/unlockd/internal/supplier/repository"
	"github.com/halopax/unlockd/internal/supplier/service"
)

var Module = fx.Module("supplier.service",
	fx.Provide(gateway.NewClient),
	fx.Provide(repository.NewRepository),
	fx.Provide(service.New),
)
