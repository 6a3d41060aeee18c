package serve

import (
	"context"
	"net"
	"net/http"
	"strconv"

	"github.com/advdv/caffe"
	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ServerConfig holds optional configuration for the HTTP server.
type ServerConfig struct {
	// HealthHandler answers the readiness check path. Defaults to a 200 "OK".
	HealthHandler caffe.Middleware
}

// DispatcherParams holds the dependencies of the dispatcher.
type DispatcherParams struct {
	fx.In

	Env           Environment
	Router        *caffe.Router
	Logger        *zap.Logger
	MeterProvider metric.MeterProvider
}

// NewDispatcher creates the dispatcher that serves the application's router. Every request gets an id, a request
// logger and is measured before it reaches the routes.
func NewDispatcher(params DispatcherParams) (*caffe.Dispatcher, error) {
	metrics, err := WithMetrics(params.MeterProvider)
	if err != nil {
		return nil, err
	}

	d := caffe.NewDispatcher(
		caffe.WithRouter(params.Router),
		caffe.WithLogger(NewDispatcherLogger(params.Logger)),
		caffe.WithSilent(params.Env.silent()),
		caffe.WithKeptHeaders(RequestIDHeader),
	)

	d.Use(
		WithRequestID(),
		WithRequestLogger(params.Logger),
		metrics,
	)

	return d, nil
}

// ServerParams holds the dependencies for creating an HTTP server.
type ServerParams struct {
	fx.In

	Env        Environment
	Dispatcher *caffe.Dispatcher
	TracerProv trace.TracerProvider
	Propagator propagation.TextMapPropagator
}

// NewServer creates the HTTP server. It registers the readiness check on the router, which is left out of
// tracing. The server timeouts and the deadline of every request follow from CAFFE_REQUEST_TIMEOUT.
func NewServer(params ServerParams, cfg ServerConfig) *http.Server {
	healthPath := params.Env.readinessCheckPath()
	health := cfg.HealthHandler
	if health == nil {
		health = defaultHealthHandler
	}

	params.Dispatcher.Router().Get(healthPath, health)

	tc := TimeoutConfig{RequestTimeout: params.Env.requestTimeout()}
	handler := WithRequestDeadline(tc.RequestDeadline())(params.Dispatcher)
	handler = withTracing(
		params.TracerProv, params.Propagator, params.Env.serviceName(), healthPath)(handler)

	readHeaderTimeout, readTimeout, writeTimeout, idleTimeout := tc.ServerTimeouts()

	return &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(params.Env.port())),
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}

// startServerHook binds the listener on start, so a taken port fails the start, and drains the server on stop.
func startServerHook(lc fx.Lifecycle, server *http.Server, logs *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			var lcfg net.ListenConfig
			ln, err := lcfg.Listen(ctx, "tcp", server.Addr)
			if err != nil {
				return errors.Wrapf(err, "failed to listen on %s", server.Addr)
			}

			logs.Info("listening", zap.String("addr", ln.Addr().String()))
			go func() {
				if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logs.Error("server error", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			logs.Info("stopping server")
			return server.Shutdown(ctx)
		},
	})
}

func defaultHealthHandler(c *caffe.Context, _ caffe.Next) error {
	c.SetStatus(http.StatusOK)
	c.SetBody("OK")
	return nil
}
