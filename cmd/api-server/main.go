// Command api-server runs the cafeteria checkout and loyalty API.
package main

import (
	"context"

	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	cafe "github.com/Homd11/CAFESYSTEM/internal/app"
)

func main() {
	app.Run(func(ctx context.Context, lg *zap.Logger, m *app.Telemetry) error {
		cfg, err := cafe.LoadConfig()
		if err != nil {
			return err
		}
		return cafe.Run(ctx, lg, m, cfg)
	})
}
