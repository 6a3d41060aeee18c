// Package caffe composes HTTP middleware into a single handler around a mutable per-request context.
//
// # Overview
//
// caffe turns an ordered list of [Middleware] into an http.Handler. Each request gets one [Context] that wraps the
// inbound request and the outbound response. Middleware reads and shapes the response through the Context and
// hands control downstream by calling next. Once the chain settles, the [Dispatcher] writes the response from the
// state the chain left behind, or routes the failure to its error handler.
//
// A minimal example:
//
//	d := caffe.NewDispatcher()
//	d.Use(
//	    caffe.Route(http.MethodGet, "/items/:id", func(c *caffe.Context, _ caffe.Next) error {
//	        item, err := db.GetItem(c.Param("id"))
//	        if err != nil {
//	            return caffe.NewError(caffe.CodeNotFound, err)
//	        }
//	        c.SetBody(item)
//	        return nil
//	    }),
//	)
//	http.ListenAndServe(":8080", d)
//
// # Middleware
//
// The middleware signature is:
//
//	func(c *caffe.Context, next caffe.Next) error
//
// The first middleware is entered first and left last. Code after the call to next runs once everything
// downstream has completed. Calling next a second time returns [ErrNextCalledTwice] instead of running the chain
// again. A middleware that does not call next ends the chain. [Compose] flattens a list of middleware into one so
// chains can be nested.
//
// # Context
//
// The [Context] starts with status 404 and no body. Setting the body drives the status: a nil body turns a status
// that was never set explicitly into 204 and strips the content headers, any other body turns it into 200. Content
// length and content type follow from the shape of the body:
//
//   - string: written verbatim, HTML when it starts with "<", text otherwise
//   - []byte: written verbatim as application/octet-stream
//   - io.Reader: streamed without a length and closed afterwards
//   - anything else: serialized as JSON
//
// The Context also answers content negotiation queries ([Context.Accepts] and friends), conditional GET checks
// ([Context.Fresh]) and redirects ([Context.Redirect]). Custom values travel between middleware with
// [Context.SetValue] and [Context.GetValue]; keys that would shadow a built-in accessor are rejected.
//
// # Routing
//
// [Route] returns middleware that runs its handlers when method and path match and falls through otherwise:
//
//	caffe.Route(http.MethodGet, "/users/:id", showUser)
//	caffe.Route(http.MethodGet, "/files/:path+", serveFile)
//	caffe.RouteMethods([]string{http.MethodPut, http.MethodPatch}, "/users/:id", updateUser)
//
// Routes registered on a [Router] can be named for URL generation:
//
//	r := caffe.NewRouter()
//	r.Get("/users/:id", showUser, "show-user")
//	d := caffe.NewDispatcher(caffe.WithRouter(r))
//
//	url, err := d.Reverse("show-user", "123") // returns "/users/123"
//
// # Error Handling
//
// A failure that escapes the chain, including a recovered panic, is passed to the [ErrorHandler]. The default
// handler does not report errors with code 404, errors marked as exposed, or anything at all when the dispatcher is
// silent. Panics with a value that is not an error are marked with [ErrNonError] and always reported. Unless the
// headers were sent already, the client then gets the status of the error (500 if it carries none) with the
// reason phrase as a plain text body. Exposed errors show their message instead:
//
//	return caffe.NewError(caffe.CodeBadRequest, errors.New("invalid input"))
package caffe
