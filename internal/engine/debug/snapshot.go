// Package debug provides debug capture utilities.
package debug

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// SnapshotWriter saves images as numbered, timestamped PNG files.
type SnapshotWriter struct {
	outputDir string
	prefix    string
	count     int
	now       func() time.Time
}

// NewSnapshotWriter creates a writer saving into outputDir. An empty
// directory means the working directory.
func NewSnapshotWriter(outputDir, prefix string) *SnapshotWriter {
	return &SnapshotWriter{
		outputDir: outputDir,
		prefix:    prefix,
		now:       time.Now,
	}
}

// Save encodes img and returns the file name written.
func (sw *SnapshotWriter) Save(img image.Image) (string, error) {
	if sw.outputDir != "" {
		if err := os.MkdirAll(sw.outputDir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	filename := sw.NextFilename()
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	sw.count++
	return filename, nil
}

// NextFilename returns the name the next Save will use. Several saves in
// one second differ by their sequence number.
func (sw *SnapshotWriter) NextFilename() string {
	timestamp := sw.now().Format("2006-01-02_15-04-05")
	filename := fmt.Sprintf("%s_%s_%03d.png", sw.prefix, timestamp, sw.count)
	if sw.outputDir != "" {
		filename = filepath.Join(sw.outputDir, filename)
	}
	return filename
}
