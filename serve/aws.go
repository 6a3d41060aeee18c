package serve

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
)

const awsConfigTimeout = 10 * time.Second

// InRegion wraps an AWS client that targets a fixed region, so the region shows in the injected type:
//
//	serve.WithAWSClient(func(cfg aws.Config) *serve.InRegion[sqs.Client] {
//	    return serve.NewInRegion(sqs.NewFromConfig(cfg), "eu-west-1")
//	}, serve.ForRegion("eu-west-1"))
type InRegion[T any] struct {
	Client *T
	Region string
}

// NewInRegion wraps client for the given region.
func NewInRegion[T any](client *T, region string) *InRegion[T] {
	return &InRegion[T]{Client: client, Region: region}
}

type clientOptions struct {
	region Region
}

// ClientOption configures the registration of an AWS client.
type ClientOption func(*clientOptions)

// ForRegion configures the client for a fixed region instead of AWS_REGION.
func ForRegion(region string) ClientOption {
	return func(o *clientOptions) {
		o.region = FixedRegion(region)
	}
}

// NewAWSConfig loads the default AWS SDK configuration.
func NewAWSConfig(ctx context.Context) (aws.Config, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return cfg, errors.Wrap(err, "failed to load aws config")
	}

	return cfg, nil
}

// provideAWSConfig loads the AWS config and instruments every client built from it.
func provideAWSConfig(tp trace.TracerProvider, prop propagation.TextMapPropagator) (aws.Config, error) {
	ctx, cancel := context.WithTimeout(context.Background(), awsConfigTimeout)
	defer cancel()

	cfg, err := NewAWSConfig(ctx)
	if err != nil {
		return cfg, err
	}

	otelaws.AppendMiddlewares(&cfg.APIOptions,
		otelaws.WithTracerProvider(tp),
		otelaws.WithTextMapPropagator(prop),
	)

	return cfg, nil
}

// AWSClientProvider provides the result of factory for injection. The config passed to factory already targets
// the region chosen by the options, AWS_REGION by default.
func AWSClientProvider[T any](factory func(aws.Config) T, opts ...ClientOption) fx.Option {
	options := &clientOptions{region: LocalRegion()}
	for _, opt := range opts {
		opt(options)
	}

	return fx.Provide(func(cfg aws.Config, env Environment) T {
		cfg = cfg.Copy()
		if r := options.region.resolve(env); r != "" {
			cfg.Region = r
		}

		return factory(cfg)
	})
}
