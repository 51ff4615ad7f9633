package algorithmia

import (
	"context"
	"io"
	"os"

	"github.com/matzehuels/algorithmia/pkg/errors"
	"github.com/matzehuels/algorithmia/pkg/requester"
)

// DataFile is a file in the data store.
type DataFile struct {
	*DataObject
}

// Exists reports whether the file exists.
func (f *DataFile) Exists(ctx context.Context) (bool, error) {
	return exists(f.client.req.Head(ctx, f.path))
}

// Bytes downloads the file.
func (f *DataFile) Bytes(ctx context.Context) ([]byte, error) {
	resp, err := f.client.req.Get(ctx, f.path, nil, nil)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// String downloads the file as text.
func (f *DataFile) String(ctx context.Context) (string, error) {
	data, err := f.Bytes(ctx)
	return string(data), err
}

// JSON downloads the file and unmarshals it into v.
func (f *DataFile) JSON(ctx context.Context, v any) error {
	resp, err := f.client.req.Get(ctx, f.path, nil, nil)
	if err != nil {
		return err
	}
	return resp.Decode(v)
}

// Put uploads data, replacing any existing file. []byte and io.Reader values
// are stored as is, strings as text and anything else as JSON.
func (f *DataFile) Put(ctx context.Context, data any) error {
	contentType := requester.ContentTypeJSON
	switch data.(type) {
	case []byte, io.Reader:
		contentType = requester.ContentTypeBinary
	case string:
		contentType = requester.ContentTypeText
	}
	_, err := f.client.req.Put(ctx, f.path, data, nil, map[string]string{"Content-Type": contentType})
	return err
}

// PutFile uploads the local file at localPath.
func (f *DataFile) PutFile(ctx context.Context, localPath string) error {
	info, err := os.Stat(localPath)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "stat %s", localPath)
	}
	if !info.Mode().IsRegular() {
		return errors.New(errors.ErrCodeInvalidInput, "%s is not a regular file", localPath)
	}
	file, err := os.Open(localPath)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", localPath)
	}
	defer file.Close()
	return f.Put(ctx, file)
}

// Delete removes the file.
func (f *DataFile) Delete(ctx context.Context) error {
	_, err := f.client.req.Delete(ctx, f.path, nil)
	return err
}

// exists maps a NOT_FOUND error to false.
func exists(_ *requester.Response, err error) (bool, error) {
	if errors.Is(err, errors.ErrCodeNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
