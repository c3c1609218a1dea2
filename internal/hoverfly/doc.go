// Package hoverfly provides the HTTP client for the proxy's admin API.
//
// # Overview
//
// The package has two layers:
//
//   - request.go: the adapter. Request performs GET, POST and DELETE calls
//     against a base URL fixed at construction and returns a Response
//     envelope (Data, Status, StatusText, Headers).
//   - api.go: the facade. API exposes one named operation per admin
//     endpoint and narrows the envelope to a concrete payload type.
//
// types.go mirrors the admin API payloads.
//
// # Endpoints
//
//	GET    /hoverfly          MainInfo
//	GET    /hoverfly/mode     ModeView
//	GET    /state             StateView
//	GET    /logs?from=<unix>  LogsResponse
//	DELETE /cache             DeleteCache
//	DELETE /shutdown          empty body
//
// Paths are relative to the base URL, which defaults to
// http://127.0.0.1:8888/api/v2. An admin bind of "host:port" gets the http
// scheme and the /api/v2 prefix; a full URL with its own path keeps it.
//
// # Errors
//
// There are no retries. Each call makes exactly one attempt:
//
//   - transport failures: "execute request: dial tcp ...: connection refused"
//   - non-2xx responses: *StatusError, usable with errors.As
//   - malformed bodies: "decode response: ..."
//
// Empty bodies decode to the zero value, which is how DELETE /shutdown is
// answered.
//
// # Log records
//
// The logs endpoint sends records with a variable set of context fields and
// no type tag. LogsItem.Context infers a LogContextKind from which fields are
// present, checking groups in a fixed order, so callers switch on Kind
// instead of probing fields.
//
// # Testing
//
// Requester and Facade are interfaces so the layers above can be tested
// with fakes. The hoverflytest package serves a fake admin API over HTTP.
package hoverfly
