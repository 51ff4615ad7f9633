// Package algorithmia is a client for the Algorithmia API.
//
// A [Client] calls hosted algorithms and reads and writes hosted data:
//
//	client, err := algorithmia.NewClient(os.Getenv("ALGORITHMIA_API_KEY"))
//	if err != nil {
//	    return err
//	}
//
//	resp, err := client.Algo("docs/JavaAddOne").Pipe(ctx, 5)
//	if err != nil {
//	    return err
//	}
//	n, _ := resp.Result.Int() // 6
//
// # Algorithm input and output
//
// The Go type of the input selects the request content type: strings are
// sent as text/plain, []byte and io.Reader as application/octet-stream and
// everything else is encoded as JSON. The response's Result is one of three
// kinds reported by the service: json, text or binary. Binary results are
// base64-decoded to their exact bytes.
//
// # Data
//
// Data URIs such as "data://.my/photos/cat.jpg" map onto the REST path
// /v1/data/.my/photos/cat.jpg. [Client.File] and [Client.Dir] return handles
// that call the service only when a method such as Exists or List is used.
//
// # Errors
//
// Every error returned by the client is an *errors.Error from
// [github.com/matzehuels/algorithmia/pkg/errors]; use errors.Is with a code to
// tell failures apart:
//
//	if errors.Is(err, errors.ErrCodeNotFound) { ... }
//
// # Caching
//
// [WithCache] memoizes results of algorithms pinned to an exact version
// ("owner/name/1.2.3"). Other references are always sent to the service.
package algorithmia
