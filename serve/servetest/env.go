package servetest

import (
	"strconv"
	"testing"
)

// Env overrides [serve.BaseEnvironment] variables through t.Setenv. Create one with [SetBaseEnv].
type Env struct {
	tb testing.TB
}

// SetBaseEnv sets every [serve.BaseEnvironment] variable to a test default. Each test passes its own port.
//
// Defaults:
//   - CAFFE_SERVICE_NAME: "test"
//   - CAFFE_LOG_LEVEL: "error"
//   - CAFFE_READINESS_CHECK_PATH: "/health"
//   - CAFFE_REQUEST_TIMEOUT: "30s"
//   - CAFFE_SILENT: "true"
//   - AWS_REGION: "us-east-1"
//   - AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY: "test"
//   - OTEL_SDK_DISABLED: "true"
//
// Chain calls on the result to override single values:
//
//	servetest.SetBaseEnv(t, 18085).AWSRegion("eu-west-1").Silent(false)
func SetBaseEnv(tb testing.TB, port int) *Env {
	tb.Helper()
	tb.Setenv("CAFFE_PORT", strconv.Itoa(port))
	tb.Setenv("CAFFE_SERVICE_NAME", "test")
	tb.Setenv("CAFFE_LOG_LEVEL", "error")
	tb.Setenv("CAFFE_OTEL_EXPORTER", "stdout")
	tb.Setenv("CAFFE_READINESS_CHECK_PATH", "/health")
	tb.Setenv("CAFFE_REQUEST_TIMEOUT", "30s")
	tb.Setenv("CAFFE_SILENT", "true")
	tb.Setenv("AWS_REGION", "us-east-1")
	tb.Setenv("AWS_ACCESS_KEY_ID", "test")
	tb.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	tb.Setenv("OTEL_SDK_DISABLED", "true")
	return &Env{tb: tb}
}

// ServiceName overrides CAFFE_SERVICE_NAME.
func (e *Env) ServiceName(name string) *Env {
	e.tb.Helper()
	e.tb.Setenv("CAFFE_SERVICE_NAME", name)
	return e
}

// ReadinessCheckPath overrides CAFFE_READINESS_CHECK_PATH.
func (e *Env) ReadinessCheckPath(path string) *Env {
	e.tb.Helper()
	e.tb.Setenv("CAFFE_READINESS_CHECK_PATH", path)
	return e
}

// RequestTimeout overrides CAFFE_REQUEST_TIMEOUT.
func (e *Env) RequestTimeout(d string) *Env {
	e.tb.Helper()
	e.tb.Setenv("CAFFE_REQUEST_TIMEOUT", d)
	return e
}

// Silent overrides CAFFE_SILENT.
func (e *Env) Silent(silent bool) *Env {
	e.tb.Helper()
	e.tb.Setenv("CAFFE_SILENT", strconv.FormatBool(silent))
	return e
}

// AWSRegion overrides AWS_REGION.
func (e *Env) AWSRegion(region string) *Env {
	e.tb.Helper()
	e.tb.Setenv("AWS_REGION", region)
	return e
}
