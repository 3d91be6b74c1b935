package customer

import (
	"go.uber.org/fx"

	"github.com/halopax/unlockd/internal/customer/repository"
	"github.com/halopax/unlockd/internal/customer/service"
)

var Module = fx.Module("customer.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
