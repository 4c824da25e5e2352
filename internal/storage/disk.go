package storage

import (
	"errors"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
)

var ErrUnsupportedType = errors.New("only image files are allowed (jpeg, jpg, png, gif, webp)")

var allowedExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Disk stores profile pictures as flat files under a single directory,
// referenced by filename from the credential record.
type Disk struct {
	dir string
}

func NewDisk(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Disk{dir: dir}, nil
}

func (d *Disk) Dir() string { return d.dir }

// ValidateImageName checks the upload's extension against the image whitelist
// and returns it lowercased.
func ValidateImageName(name string) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if !allowedExtensions[ext] {
		return "", ErrUnsupportedType
	}
	return ext, nil
}

// Save writes the uploaded file under the given name.
func (d *Disk) Save(fh *multipart.FileHeader, filename string) error {
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(d.dir, filepath.Base(filename)))
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}

// Remove deletes a stored file. A missing file is not an error.
func (d *Disk) Remove(filename string) error {
	if filename == "" {
		return nil
	}
	err := os.Remove(filepath.Join(d.dir, filepath.Base(filename)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
