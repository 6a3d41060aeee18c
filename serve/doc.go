// Package serve runs a caffe router as a long-lived HTTP service.
//
// # Overview
//
// [NewApp] assembles the application with fx: it parses the environment, builds the zap logger and the
// OpenTelemetry tracer provider, loads the AWS configuration, and serves a [caffe.Dispatcher] over the routes
// registered by the routing function.
//
//	type Env struct {
//	    serve.BaseEnvironment
//	    TableName string `env:"TABLE_NAME,required"`
//	}
//
//	func main() {
//	    serve.NewApp[Env](func(r *caffe.Router, h *Handlers) {
//	        r.Get("/items/:id", h.GetItem, "get-item")
//	    },
//	        serve.WithAWSClient(func(cfg aws.Config) *dynamodb.Client {
//	            return dynamodb.NewFromConfig(cfg)
//	        }),
//	        serve.WithFx(fx.Provide(NewHandlers)),
//	    ).Run()
//	}
//
// # Environment
//
// [BaseEnvironment] reads:
//
//   - CAFFE_PORT: port to listen on (required)
//   - CAFFE_SERVICE_NAME: service name for logs and traces (required)
//   - CAFFE_LOG_LEVEL: zap level, "info" by default
//   - CAFFE_OTEL_EXPORTER: "stdout" (default) or "xrayudp"
//   - CAFFE_READINESS_CHECK_PATH: path of the readiness check, "/health" by default
//   - CAFFE_REQUEST_TIMEOUT: upper bound for a single request, "30s" by default
//   - CAFFE_SILENT: stop reporting unhandled errors
//   - AWS_REGION: region for AWS clients
//
// # Request scope
//
// Every request gets an id ([WithRequestID]), echoed in the X-Request-ID header, and is counted and timed by
// [WithMetrics]. Handlers log through [Log], which returns the request logger with the request, trace and span ids
// attached, and annotate the server span through [Span]. The request context carries a deadline a little shorter than
// CAFFE_REQUEST_TIMEOUT so handlers can still answer with an error once it passes.
//
// # Runtime
//
// [Runtime] exposes the application scoped dependencies: the environment, reverse routing, secrets and a traced
// outbound request builder.
//
//	func (h *Handlers) GetItem(c *caffe.Context, _ caffe.Next) error {
//	    key, err := h.rt.Secret(c, "api-keys", "upstream")
//	    if err != nil {
//	        return err
//	    }
//
//	    var item Item
//	    if err := h.rt.NewRequest().
//	        BaseURL(h.rt.Env().UpstreamURL).
//	        Pathf("/items/%s", c.Param("id")).
//	        Header("X-Api-Key", key).
//	        ToJSON(&item).
//	        Fetch(c); err != nil {
//	        return caffe.NewError(caffe.CodeBadGateway, err)
//	    }
//
//	    serve.Log(c).Info("fetched item", zap.String("id", c.Param("id")))
//	    c.SetBody(item)
//	    return nil
//	}
package serve
