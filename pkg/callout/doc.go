// Package callout makes HTTP callouts against endpoints addressed by alias.
//
// An alias names a pre-registered endpoint (base URL plus whatever
// authentication it needs). A Resolver turns the alias into an Endpoint, the
// request builder assembles the outbound *http.Request, and a Transport
// performs exactly one round trip. Responses are returned verbatim: status
// codes are not interpreted, nothing is retried and nothing is cached.
//
// Long-lived use goes through a Client bound to one alias:
//
//	books := gateway.Client("GoogleBooksAPI")
//	resp, err := books.GetQuery(ctx, "volumes", "q=salesforce")
//
// One-shot use goes through the Gateway directly:
//
//	resp, err := gateway.Call(ctx, "Orders", callout.Request{
//		Verb: callout.PATCH,
//		Path: "accounts",
//		Query: "id=1",
//		Body: `{"Name":"A"}`,
//	})
//
// Endpoint assembly follows a fixed convention: base + path + encoded query,
// where the path always ends with "/" and the query is percent-encoded as one
// opaque blob. PATCH is sent as POST with a trailing "?_HttpMethod=PATCH"
// marker unless the PatchNative policy is selected.
package callout
