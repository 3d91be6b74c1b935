package order

import (
	"go.uber.org/fx"

	"github.com/halopax/unlockd/internal/order/repository"
	"github.com/halopax/unlockd/internal/order/service"
)

var Module = fx.Module("order.service",
	fx.Provide(
		repository.NewRepository,
		service.New,
	),
)
