package serve

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap/zapcore"
)

// Environment is implemented by every configuration struct that embeds [BaseEnvironment]. The accessors are
// unexported so only embedding satisfies it.
type Environment interface {
	port() int
	serviceName() string
	readinessCheckPath() string
	logLevel() zapcore.Level
	otelExporter() string
	awsRegion() string
	requestTimeout() time.Duration
	silent() bool
}

// BaseEnvironment holds the variables every served application reads. Embed it in the application's own
// environment struct to add more.
type BaseEnvironment struct {
	Port               int           `env:"CAFFE_PORT,required"`
	ServiceName        string        `env:"CAFFE_SERVICE_NAME,required"`
	LogLevel           zapcore.Level `env:"CAFFE_LOG_LEVEL" envDefault:"info"`
	OtelExporter       string        `env:"CAFFE_OTEL_EXPORTER" envDefault:"stdout"`
	ReadinessCheckPath string        `env:"CAFFE_READINESS_CHECK_PATH" envDefault:"/health"`
	RequestTimeout     time.Duration `env:"CAFFE_REQUEST_TIMEOUT" envDefault:"30s"`
	Silent             bool          `env:"CAFFE_SILENT" envDefault:"false"`
	AWSRegion          string        `env:"AWS_REGION"`
}

func (e BaseEnvironment) port() int                     { return e.Port }
func (e BaseEnvironment) serviceName() string           { return e.ServiceName }
func (e BaseEnvironment) readinessCheckPath() string    { return e.ReadinessCheckPath }
func (e BaseEnvironment) logLevel() zapcore.Level       { return e.LogLevel }
func (e BaseEnvironment) otelExporter() string          { return e.OtelExporter }
func (e BaseEnvironment) awsRegion() string             { return e.AWSRegion }
func (e BaseEnvironment) requestTimeout() time.Duration { return e.RequestTimeout }
func (e BaseEnvironment) silent() bool                  { return e.Silent }

// ParseEnv returns a constructor that reads E from the process environment.
func ParseEnv[E Environment]() func() (E, error) {
	return func() (E, error) {
		var e E
		if err := env.Parse(&e); err != nil {
			return e, errors.Wrap(err, "failed to parse environment")
		}

		return e, nil
	}
}
