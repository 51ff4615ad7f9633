package algorithmia

import (
	"context"
	"net/url"
	"time"
)

// EntryKind distinguishes files from directories in a listing.
type EntryKind string

const (
	KindFile EntryKind = "file"
	KindDir  EntryKind = "dir"
)

// Entry is one item of a directory listing. Size and LastModified are zero
// for directories.
type Entry struct {
	Name         string
	Kind         EntryKind
	Size         int64
	LastModified time.Time
}

// DataDirectory is a directory in the data store.
type DataDirectory struct {
	*DataObject
}

// Exists reports whether the directory exists.
func (d *DataDirectory) Exists(ctx context.Context) (bool, error) {
	return exists(d.client.req.Get(ctx, d.path, nil, nil))
}

// Create creates the directory inside its parent.
func (d *DataDirectory) Create(ctx context.Context) error {
	body := map[string]string{"name": d.Basename()}
	_, err := d.client.req.Post(ctx, d.Parent().Path(), body, nil, nil)
	return err
}

// Delete removes the directory. A non-empty directory is only removed when
// force is true.
func (d *DataDirectory) Delete(ctx context.Context, force bool) error {
	var query url.Values
	if force {
		query = url.Values{"force": {"true"}}
	}
	_, err := d.client.req.Delete(ctx, d.path, query)
	return err
}

// File returns a handle on the file name inside the directory.
func (d *DataDirectory) File(name string) *DataFile {
	return d.client.File(childURI(d.uri, name))
}

// Dir returns a handle on the subdirectory name.
func (d *DataDirectory) Dir(name string) *DataDirectory {
	return d.client.Dir(childURI(d.uri, name))
}

type listing struct {
	Folders []struct {
		Name string `json:"name"`
	} `json:"folders"`
	Files []struct {
		Filename     string    `json:"filename"`
		Size         int64     `json:"size"`
		LastModified time.Time `json:"last_modified"`
	} `json:"files"`
	Marker string `json:"marker"`
}

// List returns every entry of the directory, following pagination markers
// until the service reports no more pages. Directories come before files
// within each page.
func (d *DataDirectory) List(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	marker := ""
	for {
		var query url.Values
		if marker != "" {
			query = url.Values{"marker": {marker}}
		}
		resp, err := d.client.req.Get(ctx, d.path, query, nil)
		if err != nil {
			return nil, err
		}
		var page listing
		if err := resp.Decode(&page); err != nil {
			return nil, err
		}
		for _, f := range page.Folders {
			entries = append(entries, Entry{Name: f.Name, Kind: KindDir})
		}
		for _, f := range page.Files {
			entries = append(entries, Entry{
				Name:         f.Filename,
				Kind:         KindFile,
				Size:         f.Size,
				LastModified: f.LastModified,
			})
		}
		if page.Marker == "" || page.Marker == marker {
			return entries, nil
		}
		marker = page.Marker
	}
}
