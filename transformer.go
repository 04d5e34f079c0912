package sitemath

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alnah/go-sitemath/internal/fileutil"
)

// DocumentRenderer turns one HTML page into its typeset form.
// *Engine implements it.
type DocumentRenderer interface {
	Render(ctx context.Context, page []byte) ([]byte, error)
}

// Compile-time interface checks.
var (
	_ DocumentRenderer = (*Engine)(nil)
	_ Transformer      = (*FileTransformer)(nil)
)

// FileTransformer rewrites site files in place.
// Each Transform call runs in its own goroutine: read the file, render it,
// overwrite it, then report to the completion callback.
type FileTransformer struct {
	renderer DocumentRenderer
}

// NewFileTransformer creates a FileTransformer backed by renderer.
func NewFileTransformer(renderer DocumentRenderer) *FileTransformer {
	return &FileTransformer{renderer: renderer}
}

// Transform starts the job for item and returns immediately.
// onComplete is called exactly once, with nil or the job's error.
func (t *FileTransformer) Transform(ctx context.Context, item Item, onComplete Completion) {
	go func() {
		var err error
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("internal error: %v", r)
			}
			onComplete(err)
		}()
		err = t.transformFile(ctx, item.Path())
	}()
}

// transformFile performs read, render and write for one path.
func (t *FileTransformer) transformFile(ctx context.Context, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReadDocument, err)
	}

	out, err := t.renderer.Render(ctx, content)
	if err != nil {
		return err
	}

	if err := fileutil.ReplaceFile(path, out); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteDocument, err)
	}
	return nil
}

// Run enumerates the site under root, transforms every page with renderer
// and waits for all of them. Progress lines go to progress when non-nil.
// Failed pages are listed in the report; they do not stop the run.
func Run(ctx context.Context, root string, renderer DocumentRenderer, progress io.Writer) (*Report, error) {
	collections, err := Site(root)
	if err != nil {
		return nil, err
	}

	var opts []CoordinatorOption
	if progress != nil {
		opts = append(opts, WithProgress(progress))
	}
	coord := NewCoordinator(collections, opts...)

	if err := coord.Launch(ctx, NewFileTransformer(renderer)); err != nil {
		return nil, err
	}
	return coord.Wait(ctx)
}
