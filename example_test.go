package caffe_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/advdv/caffe"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

func quiet() caffe.Option { return caffe.WithLogger(caffe.NewZapLogger(zap.NewNop())) }

func Example() {
	r := caffe.NewRouter()
	r.Get("/items/:id", func(c *caffe.Context, _ caffe.Next) error {
		c.SetBody(map[string]string{
			"id":   c.Param("id"),
			"name": "Example Item",
		})
		return nil
	}, "get-item")

	d := caffe.NewDispatcher(caffe.WithRouter(r), quiet())

	// Generate URL by route name
	url, _ := d.Reverse("get-item", "123")
	fmt.Println("URL:", url)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/items/42", nil)
	d.ServeHTTP(rec, req)

	fmt.Println("Status:", rec.Code)
	fmt.Println("Body:", rec.Body.String())
	// Output:
	// URL: /items/123
	// Status: 200
	// Body: {"id":"42","name":"Example Item"}
}

func ExampleNewError() {
	d := caffe.NewDispatcher(quiet())
	d.Use(caffe.Route(http.MethodGet, "/protected", func(c *caffe.Context, _ caffe.Next) error {
		token := c.Get("Authorization")
		if token == "" {
			return caffe.NewError(caffe.CodeUnauthorized, errors.New("missing token"))
		}
		if token != "Bearer secret" {
			return caffe.NewError(caffe.CodeForbidden, errors.New("invalid token"))
		}
		c.SetBody("welcome")
		return nil
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	d.ServeHTTP(rec, req)
	fmt.Println("No token:", rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	d.ServeHTTP(rec, req)
	fmt.Println("Bad token:", rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer secret")
	d.ServeHTTP(rec, req)
	fmt.Println("Valid token:", rec.Code)
	// Output:
	// No token: 401 missing token
	// Bad token: 403
	// Valid token: 200
}

func ExampleDispatcher_Use() {
	d := caffe.NewDispatcher(quiet())

	// Add request ID middleware
	d.Use(func(c *caffe.Context, next caffe.Next) error {
		if err := c.Set("X-Request-ID", "req-123"); err != nil {
			return err
		}
		return next()
	})

	d.Use(caffe.Route(http.MethodGet, "/ping", caffe.Plaintext(http.StatusOK, "pong")))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	d.ServeHTTP(rec, req)

	fmt.Println("Body:", rec.Body.String())
	fmt.Println("Request ID:", rec.Header().Get("X-Request-ID"))
	// Output:
	// Body: pong
	// Request ID: req-123
}

func ExampleRouter_Reverse() {
	noop := func(*caffe.Context, caffe.Next) error { return nil }

	r := caffe.NewRouter()
	r.Get("/users/:id", noop, "get-user")
	r.Get("/users/:userId/posts/:postId", noop, "get-user-post")
	r.Get("/files/:path+", noop, "get-file")

	url1, _ := r.Reverse("get-user", "42")
	url2, _ := r.Reverse("get-user-post", "42", "101")
	url3, _ := r.Reverse("get-file", "docs/read me.txt")

	fmt.Println(url1)
	fmt.Println(url2)
	fmt.Println(url3)
	// Output:
	// /users/42
	// /users/42/posts/101
	// /files/docs/read%20me.txt
}

func ExampleContext_Redirect() {
	h := caffe.Brew(func(c *caffe.Context, _ caffe.Next) error {
		c.Redirect("/login")
		return nil
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "text/html")
	h.ServeHTTP(rec, req)

	fmt.Println(rec.Code, rec.Header().Get("Location"))
	fmt.Println(rec.Body.String())
	// Output:
	// 302 /login
	// Redirecting to <a href="/login">/login</a>.
}

func ExampleCodeOf() {
	// Create an error with a specific code
	err := caffe.NewError(caffe.CodeNotFound, errors.New("user not found"))
	fmt.Println("Code:", caffe.CodeOf(err))

	// Wrapped errors preserve the code
	wrapped := fmt.Errorf("handler failed: %w", err)
	fmt.Println("Wrapped code:", caffe.CodeOf(wrapped))

	// Other errors return CodeUnknown
	plainErr := errors.New("something went wrong")
	fmt.Println("Plain error code:", caffe.CodeOf(plainErr))
	// Output:
	// Code: 404
	// Wrapped code: 404
	// Plain error code: 0
}
