package upstream

import (
	"go.uber.org/fx"
)

// Module provides the upstream client dependencies
var Module = fx.Options(
	fx.Provide(
		NewClient,
		NewLookup,
	),
)
