// Package scanner walks a workspace looking for files of interest.
package scanner

import (
	"context"
	"io/fs"
	"path"
	"sync"

	"github.com/spf13/afero"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("luau-lsp.scanner")

// Scan walks the subtree under root. Directories for which ignore returns
// true are skipped entirely. Every file whose base name satisfies match is
// passed to callback on a single worker goroutine. Scan returns once all
// callbacks have completed or ctx is done.
func Scan(
	ctx context.Context,
	fsys afero.Fs,
	root string,
	ignore func(name string) bool,
	match func(name string) bool,
	callback func(path string),
) error {
	fileCh := make(chan string, 100)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for p := range fileCh {
			callback(p)
		}
	}()

	log.Debugf("walking %s", root)
	err := afero.Walk(fsys, root, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			log.Warningf("walking %s: %v", p, err)
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		name := path.Base(p)
		if info.IsDir() {
			if p != root && ignore != nil && ignore(name) {
				log.Debugf("skipping %s", p)
				return fs.SkipDir
			}
			return nil
		}
		if match(name) {
			fileCh <- p
		}
		return nil
	})

	close(fileCh)
	wg.Wait()
	return err
}
