// Package archive uploads exported resumes to Google Cloud Storage.
package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

// IsGCSURI reports whether the path names a GCS object rather than a local
// file.
func IsGCSURI(p string) bool {
	return strings.HasPrefix(p, "gs://")
}

// Uploader copies exported PDFs into a bucket. It assumes Application Default
// Credentials are configured.
type Uploader struct {
	Bucket string
}

// Upload stores the file under its base name and returns the gs:// URI.
func (u *Uploader) Upload(ctx context.Context, filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("open file %q: %w", filePath, err)
	}
	defer f.Close()

	client, err := storage.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	objectName := filepath.Base(filePath)
	w := client.Bucket(u.Bucket).Object(objectName).NewWriter(ctx)
	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("copy file to GCS writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize upload: %w", err)
	}

	return "gs://" + u.Bucket + "/" + objectName, nil
}

// Download fetches the bytes behind a gs:// URI, for pulling a previously
// archived resume back down.
func Download(ctx context.Context, gcsURI string) ([]byte, error) {
	trimmed, ok := strings.CutPrefix(gcsURI, "gs://")
	if !ok {
		return nil, fmt.Errorf("invalid GCS URI: %s", gcsURI)
	}
	bucketName, objectPath, ok := strings.Cut(trimmed, "/")
	if !ok || objectPath == "" {
		return nil, fmt.Errorf("invalid GCS URI (no object path): %s", gcsURI)
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	r, err := client.Bucket(bucketName).Object(objectPath).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open GCS object reader: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read GCS object: %w", err)
	}
	return data, nil
}

// FetchToFile downloads the object behind a gs:// URI into dir under its base
// name and returns the local path.
func FetchToFile(ctx context.Context, gcsURI, dir string) (string, error) {
	data, err := Download(ctx, gcsURI)
	if err != nil {
		return "", err
	}

	local := filepath.Join(dir, path.Base(gcsURI))
	if err := os.WriteFile(local, data, 0o644); err != nil {
		return "", fmt.Errorf("write %q: %w", local, err)
	}
	return local, nil
}
