package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/xpolbeamline/internal/beamline/l1frames"
	"github.com/banshee-data/xpolbeamline/internal/fsutil"
)

// WriteImage stores stack and hdr as the PRIMARY extension, replacing any
// previous one.
func (a *Archive) WriteImage(stack *l1frames.Stack, hdr *l1frames.Header) error {
	if err := stack.Validate(); err != nil {
		return err
	}
	nx, ny := stack.Dims()
	blob, err := encodeBlob(imageBlob{Data: stack.Values()})
	if err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	return a.withTx(func(tx *sql.Tx) error {
		id, err := a.replaceHDU(tx, PrimaryExtName, "image", 0, hdr, nil)
		if err != nil {
			return err
		}
		_, err = tx.Exec(`INSERT INTO image_data (hdu_id, frames, nx, ny, data_blob) VALUES (?, ?, ?, ?, ?)`,
			id, stack.Len(), nx, ny, blob)
		return err
	})
}

// ReadImage returns the PRIMARY stack and header.
func (a *Archive) ReadImage() (*l1frames.Stack, *l1frames.Header, error) {
	id, _, err := a.lookupHDU(PrimaryExtName, "image")
	if err != nil {
		return nil, nil, err
	}

	var frames, nx, ny int
	var blob []byte
	err = a.db.QueryRow(`SELECT frames, nx, ny, data_blob FROM image_data WHERE hdu_id = ?`, id).
		Scan(&frames, &nx, &ny, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("%w: %s image data", ErrNoExtension, PrimaryExtName)
	}
	if err != nil {
		return nil, nil, err
	}

	var img imageBlob
	if err := decodeBlob(blob, &img); err != nil {
		return nil, nil, err
	}
	plane := nx * ny
	if len(img.Data) != frames*plane {
		return nil, nil, fmt.Errorf("image blob holds %d values, want %d×%d×%d", len(img.Data), frames, nx, ny)
	}
	stack := &l1frames.Stack{Frames: make([]*mat.Dense, frames)}
	for f := range stack.Frames {
		stack.Frames[f] = mat.NewDense(nx, ny, img.Data[f*plane:(f+1)*plane])
	}

	hdr, err := a.readHeader(id)
	if err != nil {
		return nil, nil, err
	}
	return stack, hdr, nil
}

// Source loads frame stacks from the PRIMARY extension of archive files.
type Source struct{}

// Load implements l1frames.Source. Missing files are an error rather than
// an empty archive.
func (Source) Load(path string) (*l1frames.Stack, *l1frames.Header, error) {
	if !(fsutil.OSFileSystem{}).Exists(path) {
		return nil, nil, fmt.Errorf("archive %s does not exist", path)
	}
	a, err := Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	defer a.Close()
	return a.ReadImage()
}
