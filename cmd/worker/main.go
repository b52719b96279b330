package main

import (
	"github.com/septivank/earthquake-catalog/internal/app"
	"github.com/septivank/earthquake-catalog/internal/config"
	"go.uber.org/fx"
)

func main() {
	app.Run("earthquake-worker",
		fx.Provide(config.LoadWorker),
		app.Catalog,
		fx.Provide(ProvideIngestService),
		fx.Invoke(startWorker),
	)
}
