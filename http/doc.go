// Package http builds and sends requests against an HTTP API through
// endpoints derived from a base URL.
//
// A Client owns one *http.Client and a base URL. Endpoints created from it
// share that *http.Client and carry their own pending request state:
//
//   - Combine and Duplicate return new endpoints
//   - Header, Body, BodyEncoded, Stream, Params and Reset change the
//     receiver and return it, so calls can be chained
//   - Get and Post send the request and return the body as text
//   - GetAs and PostAs hand the raw request and response to a ProcessFunc
//
// Basic Usage:
//
//	client, err := http.NewClient("https://api.example.com/")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	user := client.CreateEndpoint("user/")
//	body, err := user.Combine("alice").
//	    Header("Accept", "application/json").
//	    Get(context.Background())
//
// Typed results:
//
//	type User struct {
//	    Name string `json:"name"`
//	}
//
//	alice, err := http.GetAs(ctx, user.Combine("alice"),
//	    http.RequireSuccess(http.AsJSON[User]()))
//
// Headers:
//
// Content-Type, Content-Language, Content-Length, Content-Location,
// Content-MD5, Content-Range, Allow, Expires and LastModified (matched
// case-sensitively) describe the body and replace whatever the body sets for
// the same name. Every other header is written to the request as given,
// without canonicalising its name; one that matches a body header in another
// letter case, such as "content-type", replaces the body's value. Setting a
// name twice on one endpoint is an error (ErrDuplicateHeader).
//
// Client defaults (WithHeader) fill in transport headers the request does
// not carry. A content header default, such as Content-Type, replaces what
// the body sets unless the endpoint sets that header itself.
//
// Errors from fluent calls are kept on the endpoint (see Endpoint.Err) and
// returned by the next terminal call. Transport errors are returned as the
// *http.Client produced them. Non-2xx responses are not errors unless the
// ProcessFunc makes them one, e.g. with RequireSuccess.
//
// Thread Safety:
//
// Client is safe for concurrent use. Endpoint is not: callers sharing an
// endpoint must serialise their calls, or Duplicate it per goroutine.
package http
