package serve_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/advdv/caffe"
	"github.com/advdv/caffe/serve"
	"github.com/advdv/caffe/serve/servetest"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/cockroachdb/errors"
)

// TestEnv adds application variables to the base environment.
type TestEnv struct {
	serve.BaseEnvironment
	MainTableName string `env:"MAIN_TABLE_NAME,required"`
	BucketName    string `env:"BUCKET_NAME,required"`
	QueueURL      string `env:"QUEUE_URL,required"`
}

func setTestEnvVars(t *testing.T) {
	t.Helper()
	t.Setenv("MAIN_TABLE_NAME", "test-table")
	t.Setenv("BUCKET_NAME", "test-bucket")
	t.Setenv("QUEUE_URL", "test-queue")
}

func setTestEnv(t *testing.T, port int) *servetest.Env {
	t.Helper()
	env := servetest.SetBaseEnv(t, port)
	setTestEnvVars(t)
	return env
}

type Handlers struct {
	rt     *serve.Runtime[TestEnv]
	dynamo *dynamodb.Client
	s3     *s3.Client
	sqs    *sqs.Client
}

func NewHandlers(rt *serve.Runtime[TestEnv], dynamo *dynamodb.Client, s3 *s3.Client, sqs *sqs.Client) *Handlers {
	return &Handlers{rt: rt, dynamo: dynamo, s3: s3, sqs: sqs}
}

func (h *Handlers) TestContext(c *caffe.Context, _ caffe.Next) error {
	env := h.rt.Env()

	itemURL, err := h.rt.Reverse("get-item", "test-123")
	if err != nil {
		return err
	}

	serve.Span(c).AddEvent("context-test")
	serve.Log(c).Info("testing context features")

	_, hasDeadline := c.Deadline()
	c.SetBody(map[string]any{
		"env": map[string]string{
			"table":        env.MainTableName,
			"bucket":       env.BucketName,
			"queue":        env.QueueURL,
			"service_name": env.ServiceName,
		},
		"span_valid":   serve.Span(c).SpanContext().IsValid(),
		"has_deadline": hasDeadline,
		"reversed_url": itemURL,
	})

	return nil
}

func (h *Handlers) TestAWS(c *caffe.Context, _ caffe.Next) error {
	serve.Log(c).Info("testing AWS clients")

	c.SetBody(map[string]bool{
		"dynamo": h.dynamo != nil,
		"s3":     h.s3 != nil,
		"sqs":    h.sqs != nil,
	})

	return nil
}

func (h *Handlers) CreateItem(c *caffe.Context, _ caffe.Next) error {
	if !strings.HasPrefix(c.Get("Content-Type"), "application/json") {
		return caffe.NewError(caffe.CodeUnsupportedMediaType, errors.New("expected a json body"))
	}

	var body map[string]any
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil {
		return caffe.NewError(caffe.CodeBadRequest, errors.Wrap(err, "decode body"))
	}

	serve.Span(c).AddEvent("creating-item")
	serve.Log(c).Info("creating item")

	c.SetStatus(http.StatusCreated)
	c.SetBody(map[string]any{
		"id":    "item-123",
		"table": h.rt.Env().MainTableName,
		"data":  body,
	})

	return nil
}

func (h *Handlers) GetItem(c *caffe.Context, _ caffe.Next) error {
	id := c.Param("id")
	selfURL, _ := h.rt.Reverse("get-item", id)

	serve.Log(c).Info("getting item")

	c.SetBody(map[string]any{
		"id":       id,
		"table":    h.rt.Env().MainTableName,
		"self_url": selfURL,
	})

	return nil
}

func (h *Handlers) Fail(*caffe.Context, caffe.Next) error {
	return errors.New("database on fire")
}

func doGet(ctx context.Context, client *http.Client, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	return client.Do(req)
}

func doPost(ctx context.Context, client *http.Client, url, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", contentType)
	return client.Do(req)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	return string(data)
}
