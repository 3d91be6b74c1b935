package tenant

import (
	"go.uber.org/fx"

	"github.com/halopax/unlockd/internal/tenant/repository"
	"github.com/halopax/unlockd/internal/tenant/service"
)

var Module = fx.Module("tenant.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
