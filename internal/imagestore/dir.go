package imagestore

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spigell/fitting-room/internal/apperr"
)

// Dir loads images from a local directory.
type Dir struct {
	root string
}

func NewDir(root string) *Dir {
	return &Dir{root: root}
}

func (d *Dir) Load(ctx context.Context, ref string) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	key, err := objectKey(ref)
	if err != nil {
		return nil, "", err
	}

	data, err := os.ReadFile(filepath.Join(d.root, filepath.FromSlash(key)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", apperr.NotFound("image %s not found", ref)
		}
		return nil, "", apperr.Persistence(err, "read image %s", ref)
	}

	return data, detectMIME(data, ""), nil
}
