// Package servetest provides test helpers for serve applications.
//
// [New] builds the same graph as [serve.NewApp] on an [fxtest.App], which fails the test on any graph error:
//
//	servetest.SetBaseEnv(t, 18081)
//	app := servetest.New[Env](t, routing, serve.WithFx(fx.Provide(NewHandlers)))
//	app.RequireStart()
//	t.Cleanup(app.RequireStop)
package servetest

import (
	"testing"

	"github.com/advdv/caffe/serve"
	"go.uber.org/fx/fxtest"
)

// App embeds *fxtest.App for testing serve applications.
type App struct {
	*fxtest.App
}

// New creates a test app with the same graph as [serve.NewApp].
func New[E serve.Environment](tb testing.TB, routing any, opts ...serve.Option) *App {
	return &App{App: fxtest.New(tb, serve.FxOptions[E](routing, opts...)...)}
}
