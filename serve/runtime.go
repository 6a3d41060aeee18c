package serve

import (
	"context"
	"net/http"

	"github.com/advdv/caffe"
	"github.com/carlmjohnson/requests"
	"github.com/cockroachdb/errors"
)

// Runtime gives handlers access to application scoped dependencies. Inject it into handler constructors:
//
//	func NewHandlers(rt *serve.Runtime[Env]) *Handlers {
//	    return &Handlers{rt: rt}
//	}
type Runtime[E Environment] struct {
	env       E
	router    *caffe.Router
	secrets   SecretReader
	transport http.RoundTripper
}

// RuntimeParams holds the optional dependencies of a Runtime.
type RuntimeParams struct {
	SecretReader SecretReader
	Transport    http.RoundTripper
}

// NewRuntime creates a Runtime. Without a transport, outbound requests use http.DefaultTransport.
func NewRuntime[E Environment](env E, router *caffe.Router, params RuntimeParams) *Runtime[E] {
	if params.Transport == nil {
		params.Transport = http.DefaultTransport
	}

	return &Runtime[E]{
		env:       env,
		router:    router,
		secrets:   params.SecretReader,
		transport: params.Transport,
	}
}

// Env returns the parsed environment.
func (r *Runtime[E]) Env() E { return r.env }

// Reverse builds the path of the named route.
func (r *Runtime[E]) Reverse(name string, vals ...string) (string, error) {
	return r.router.Reverse(name, vals...)
}

// Secret reads a secret, optionally extracting the value at a gjson path of a JSON secret:
//
//	password, err := rt.Secret(ctx, "db-credentials", "password")
//
// Reads are cached but go through the reader on every call so rotated secrets are picked up.
func (r *Runtime[E]) Secret(ctx context.Context, secretID string, jsonPath ...string) (string, error) {
	if r.secrets == nil {
		return "", errors.New("serve: no secret reader configured")
	}

	return secretFromReader(ctx, r.secrets, secretID, jsonPath...)
}

// ResolveSecret returns middleware that stores the secret under key for every request. See [ResolveSecret].
func (r *Runtime[E]) ResolveSecret(key, secretID string, jsonPath ...string) caffe.Middleware {
	if r.secrets == nil {
		panic("serve: no secret reader configured")
	}

	return ResolveSecret(r.secrets, key, secretID, jsonPath...)
}

// NewRequest starts an outbound request that is traced through the instrumented transport:
//
//	err := rt.NewRequest().BaseURL("https://api.example.com").Path("/items").ToJSON(&items).Fetch(c)
func (r *Runtime[E]) NewRequest() *requests.Builder {
	return newRequestBuilder(r.transport)
}
