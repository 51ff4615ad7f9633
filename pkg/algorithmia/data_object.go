package algorithmia

import "strings"

// DataScheme prefixes URIs of hosted data.
const DataScheme = "data://"

const dataRoot = "/v1/data/"

// DataObject is a file or directory in the service's data store. It carries
// no remote state; every method that needs it calls the service.
//
// URIs are not validated locally. A malformed URI surfaces as a NOT_FOUND
// error from the service.
type DataObject struct {
	client *Client
	uri    string
	path   string
}

// NewDataObject creates a handle on uri. The first "data://" prefix is
// removed and the rest is appended to the data REST root as is: segments
// such as ".." and the "//" of connector schemes are left for the service
// to interpret, so the path never leaves the data root.
func NewDataObject(client *Client, uri string) *DataObject {
	rest := strings.Replace(uri, DataScheme, "", 1)
	return &DataObject{
		client: client,
		uri:    uri,
		path:   dataRoot + strings.TrimLeft(rest, "/"),
	}
}

// URI returns the URI the object was created with.
func (o *DataObject) URI() string { return o.uri }

// Path returns the REST path, e.g. "/v1/data/.my/photos/cat.jpg".
func (o *DataObject) Path() string { return o.path }

// Basename returns the last segment of the REST path, ignoring a trailing
// slash. The data root itself ("data://") has an empty basename.
func (o *DataObject) Basename() string {
	_, name := splitLast(strings.TrimPrefix(o.path, dataRoot))
	return name
}

// Parent returns the directory containing the object. It is derived from the
// URI, not the REST path, so "data://a/b/c" has parent "data://a/b".
func (o *DataObject) Parent() *DataDirectory {
	return o.client.Dir(parentURI(o.uri))
}

func parentURI(uri string) string {
	scheme, rest := splitScheme(uri)
	dir, _ := splitLast(rest)
	return scheme + dir
}

// splitLast splits p at its last slash after dropping trailing slashes.
// A single segment has an empty dir.
func splitLast(p string) (dir, name string) {
	p = strings.TrimRight(p, "/")
	i := strings.LastIndex(p, "/")
	if i < 0 {
		return "", p
	}
	return p[:i], p[i+1:]
}

// childURI appends name to a directory URI.
func childURI(uri, name string) string {
	scheme, rest := splitScheme(uri)
	name = strings.TrimLeft(name, "/")
	rest = strings.TrimRight(rest, "/")
	if rest == "" {
		return scheme + name
	}
	return scheme + rest + "/" + name
}

func splitScheme(uri string) (scheme, rest string) {
	if i := strings.Index(uri, "://"); i >= 0 {
		return uri[:i+3], uri[i+3:]
	}
	return "", uri
}
