// Package storage keeps uploaded images on local disk under UPLOADS_DIR,
// one subfolder per resource type, and resolves their public /images URLs.
package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	FolderProducts   = "products"
	FolderCategories = "categories"
	FolderAvatars    = "avatars"
	FolderTemp       = "temp"

	// MaxFileSize caps a single uploaded image at 5MB.
	MaxFileSize = 5 << 20
)

var allowedExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

func BaseDir() string {
	if dir := os.Getenv("UPLOADS_DIR"); dir != "" {
		return dir
	}

	return "./uploads"
}

// EnsureDirs creates the upload folder tree. Called once at startup.
func EnsureDirs() error {
	for _, folder := range []string{FolderProducts, FolderCategories, FolderAvatars, FolderTemp} {
		if err := os.MkdirAll(filepath.Join(BaseDir(), folder), 0o755); err != nil {
			return err
		}
	}

	return nil
}

// SaveUpload validates and stores a multipart image under the given folder,
// returning the generated file name.
func SaveUpload(file *multipart.FileHeader, folder string) (string, error) {
	if file.Size > MaxFileSize {
		return "", fmt.Errorf("file too large: maximum size is 5MB")
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))

	if !allowedExtensions[ext] {
		return "", fmt.Errorf("only images are allowed (jpeg, jpg, png, gif, webp)")
	}

	base := strings.TrimSuffix(filepath.Base(file.Filename), filepath.Ext(file.Filename))
	name := fmt.Sprintf("%s-%s%s", base, uuid.NewString(), ext)

	src, err := file.Open()

	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(BaseDir(), folder, name))

	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}

	return name, nil
}

// MoveToPermanent relocates a file from the temp folder into its final
// folder, overwriting any existing file of the same name.
func MoveToPermanent(filename, folder string) error {
	src := filepath.Join(BaseDir(), FolderTemp, filename)
	dst := filepath.Join(BaseDir(), folder, filename)

	return os.Rename(src, dst)
}

// Remove deletes a stored file. Missing files are not an error.
func Remove(filename, folder string) error {
	err := os.Remove(filepath.Join(BaseDir(), folder, filename))

	if err != nil && !os.IsNotExist(err) {
		return err
	}

	return nil
}

// PublicURL resolves the path a client uses to fetch a stored file.
func PublicURL(filename, folder string) string {
	if filename == "" {
		return ""
	}

	return fmt.Sprintf("/images/%s/%s", folder, filename)
}
