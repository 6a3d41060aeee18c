package serve

import (
	"net/http"
	"strconv"
	"time"

	"github.com/advdv/caffe"
	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/fx"
)

const instrumentationName = "github.com/advdv/caffe/serve"

// MeterProviderParams holds the dependencies of the meter provider.
type MeterProviderParams struct {
	fx.In

	Env     Environment
	Readers []sdkmetric.Reader `group:"metric_readers"`
}

// NewMeterProvider builds the meter provider that collects into the readers registered with [WithMetricReader].
// Without readers measurements are dropped. It is shut down with the application.
func NewMeterProvider(lc fx.Lifecycle, params MeterProviderParams) metric.MeterProvider {
	opts := []sdkmetric.Option{
		sdkmetric.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(params.Env.serviceName()),
		)),
	}
	for _, r := range params.Readers {
		opts = append(opts, sdkmetric.WithReader(r))
	}

	mp := sdkmetric.NewMeterProvider(opts...)
	lc.Append(fx.StopHook(mp.Shutdown))

	return mp
}

// WithMetricReader registers a reader, e.g. a periodic exporter, with the meter provider.
func WithMetricReader(r sdkmetric.Reader) Option {
	return WithFx(fx.Provide(fx.Annotate(
		func() sdkmetric.Reader { return r },
		fx.ResultTags(`group:"metric_readers"`),
	)))
}

// WithMetrics returns middleware that counts requests and records their duration, both by method and status code.
// Failed requests are also counted as errors, by the code of the error.
func WithMetrics(mp metric.MeterProvider) (caffe.Middleware, error) {
	meter := mp.Meter(instrumentationName)

	requests, err := meter.Int64Counter("http.server.requests",
		metric.WithDescription("Number of handled requests"),
		metric.WithUnit("{request}"))
	if err != nil {
		return nil, errors.Wrap(err, "create request counter")
	}

	failures, err := meter.Int64Counter("http.server.errors",
		metric.WithDescription("Number of requests that failed with an error"),
		metric.WithUnit("{error}"))
	if err != nil {
		return nil, errors.Wrap(err, "create error counter")
	}

	duration, err := meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("Duration of handled requests"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, errors.Wrap(err, "create duration histogram")
	}

	return func(c *caffe.Context, next caffe.Next) error {
		start := time.Now()
		err := next()

		code := c.Status()
		if err != nil {
			code = failedStatus(err)
			failures.Add(c, 1, metric.WithAttributes(
				attribute.String("http.request.method", c.Method()),
				attribute.String("error.code", strconv.Itoa(code)),
			))
		}

		attrs := metric.WithAttributes(
			attribute.String("http.request.method", c.Method()),
			attribute.Int("http.response.status_code", code),
		)
		requests.Add(c, 1, attrs)
		duration.Record(c, time.Since(start).Seconds(), attrs)

		return err
	}, nil
}

// failedStatus is the status the dispatcher answers a failure with.
func failedStatus(err error) int {
	code := int(caffe.CodeOf(err))
	if code < 400 || code > 599 {
		return http.StatusInternalServerError
	}

	return code
}
