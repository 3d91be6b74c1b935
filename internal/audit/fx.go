package audit

import (
	"go.uber.org/fx"

	"github.com/halopax/unlockd/internal/audit/repository"
	"github.com/halopax/unlockd/internal/audit/service"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
