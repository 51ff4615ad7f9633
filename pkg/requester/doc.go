// Package requester issues every HTTP call the Algorithmia client makes.
//
// # Overview
//
// A [Requester] owns the base address and the default header set, performs
// GET, POST, PUT, HEAD and DELETE against service endpoints, and classifies
// each response into either a [Response] or an [*errors.Error]:
//
//	req, err := requester.New(requester.Config{
//	    APIAddress: "https://api.algorithmia.com",
//	    APIKey:     os.Getenv("ALGORITHMIA_API_KEY"),
//	})
//	resp, err := req.Post(ctx, "/v1/algo/demo/Hello", "world", nil,
//	    map[string]string{"Content-Type": "text/plain"})
//
// # Headers
//
// Every call starts from the defaults (Content-Type: application/json, a
// fixed User-Agent, and Authorization when an API key is configured) and
// applies per-call overrides on top, caller wins per key. GET and HEAD never
// send Content-Type. DELETE always uses the defaults unchanged.
//
// # Bodies
//
// When the merged Content-Type is application/json the body is encoded with
// encoding/json. Otherwise []byte, string and io.Reader bodies are sent
// byte-for-byte, which keeps binary payloads intact.
//
// # Classification
//
// Status codes map to error codes (401, 404, 500, ...). A 2xx response whose
// JSON body carries an "error" member is an error as well: the service
// reports algorithm-level failures inside successful responses. Responses
// without a body fall back to fixed messages.
//
// # Concurrency
//
// Configuration is fixed by [New]; a Requester is safe for concurrent use
// as long as its http.Client is, which holds for the default client.
package requester
