package download

import (
	"context"
	"fmt"

	"reelpipe/internal/queue"
	"reelpipe/internal/services"
)

// File is a fetched source video on local disk.
type File struct {
	Path string
	// SourceCaption is the text extracted from the source post, when the
	// platform exposes one. Empty for platforms that do not.
	SourceCaption string
}

// Downloader fetches one source URL into the download directory under
// baseName (extension chosen by the downloader).
type Downloader interface {
	Fetch(ctx context.Context, url, baseName string) (File, error)
}

// Dispatcher routes fetches to the downloader registered for each source.
type Dispatcher struct {
	downloaders map[queue.Source]Downloader
}

// NewDispatcher builds a dispatcher over the given source map.
func NewDispatcher(downloaders map[queue.Source]Downloader) *Dispatcher {
	return &Dispatcher{downloaders: downloaders}
}

// Fetch downloads one item's source video.
func (d *Dispatcher) Fetch(ctx context.Context, source queue.Source, url, baseName string) (File, error) {
	dl, ok := d.downloaders[source]
	if !ok || dl == nil {
		return File{}, services.Wrap(services.ErrFetch, "download", "dispatch",
			fmt.Sprintf("no downloader registered for source %q", source), nil)
	}
	return dl.Fetch(ctx, url, baseName)
}
