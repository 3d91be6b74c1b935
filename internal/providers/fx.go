package providers

import (
	"go.uber.org/fx"

	"github.com/halopax/unlockd/internal/providers/sms"
)

var Module = fx.Module("providers",
	sms.Module,
)
