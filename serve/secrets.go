package serve

import (
	"context"

	"github.com/advdv/caffe"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-secretsmanager-caching-go/v2/secretcache"
	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"
)

// SecretReader reads secret strings by name or ARN.
type SecretReader interface {
	GetSecretString(ctx context.Context, secretID string) (string, error)
}

// AWSSecretReader reads secrets from AWS Secrets Manager through a local cache.
type AWSSecretReader struct {
	cache *secretcache.Cache
}

// NewAWSSecretReader creates a reader backed by a Secrets Manager client built from cfg.
func NewAWSSecretReader(cfg aws.Config) (*AWSSecretReader, error) {
	client := secretsmanager.NewFromConfig(cfg)

	cache, err := secretcache.New(func(c *secretcache.Cache) {
		c.Client = client
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create secret cache")
	}

	return &AWSSecretReader{cache: cache}, nil
}

// GetSecretString returns the cached value of the secret, fetching it when it is missing or stale.
func (r *AWSSecretReader) GetSecretString(ctx context.Context, secretID string) (string, error) {
	secret, err := r.cache.GetSecretStringWithContext(ctx, secretID)
	if err != nil {
		return "", errors.Wrapf(err, "failed to get secret %q", secretID)
	}

	return secret, nil
}

// ResolveSecret returns middleware that reads the secret for every request and stores it as a string under key.
// With a jsonPath the secret is parsed as JSON and only the value at that gjson path is stored. A failed read
// ends the chain. It panics if key is reserved.
func ResolveSecret(reader SecretReader, key, secretID string, jsonPath ...string) caffe.Middleware {
	return caffe.Resolve(key, func(c *caffe.Context) (string, error) {
		return secretFromReader(c, reader, secretID, jsonPath...)
	})
}

func secretFromReader(ctx context.Context, reader SecretReader, secretID string, jsonPath ...string) (string, error) {
	if len(jsonPath) > 1 {
		return "", errors.New("serve: at most one json path may be given for a secret")
	}

	secret, err := reader.GetSecretString(ctx, secretID)
	if err != nil {
		return "", err
	}

	if len(jsonPath) == 0 || jsonPath[0] == "" {
		return secret, nil
	}

	res := gjson.Get(secret, jsonPath[0])
	if !res.Exists() {
		return "", errors.Errorf("secret path %q not found in secret %q", jsonPath[0], secretID)
	}

	return res.String(), nil
}
