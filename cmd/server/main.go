package main

import (
	"github.com/septivank/earthquake-catalog/internal/app"
	"github.com/septivank/earthquake-catalog/internal/config"
	"go.uber.org/fx"
)

func main() {
	app.Run("earthquake-api",
		fx.Provide(config.LoadServer),
		app.Catalog,
		fx.Provide(newRouter),
		fx.Invoke(startHTTPServer),
	)
}
