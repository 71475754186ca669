package series

import "go.uber.org/fx"

// FXModule provides a *Sink over the Store in the container.
var FXModule = fx.Module("series",
	fx.Provide(NewSink),
)
