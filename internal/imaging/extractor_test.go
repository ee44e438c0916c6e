package imaging

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"watchtower/internal/models"
)

// writeTestImage writes a uniform gray PNG and returns its path.
func writeTestImage(t *testing.T, gray uint8, width, height int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: gray, G: gray, B: gray, A: 255})
		}
	}

	path := filepath.Join(t.TempDir(), "frame.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create test image: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return path
}

func TestExtractUniformImage(t *testing.T) {
	path := writeTestImage(t, 100, 8, 6)

	meta, err := Extract(path)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if meta.Width != 8 || meta.Height != 6 {
		t.Fatalf("expected 8x6, got %dx%d", meta.Width, meta.Height)
	}
	if meta.Brightness != 100.0 {
		t.Fatalf("expected brightness 100.00 for uniform image, got %v", meta.Brightness)
	}
	// A uniform image has no intensity gradients, so no edge pixels
	if meta.EdgePixels != 0 {
		t.Fatalf("expected 0 edge pixels for uniform image, got %d", meta.EdgePixels)
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	path := writeTestImage(t, 73, 16, 16)

	first, err := Extract(path)
	if err != nil {
		t.Fatalf("first Extract returned error: %v", err)
	}
	second, err := Extract(path)
	if err != nil {
		t.Fatalf("second Extract returned error: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical results, got %+v and %+v", first, second)
	}
}

func TestExtractRejectsNonImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-an-image.jpg")
	if err := os.WriteFile(path, []byte("definitely not pixels"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	_, err := Extract(path)
	if err == nil {
		t.Fatal("expected decode error for non-image bytes")
	}
	if !errors.Is(err, models.ErrImageDecode) {
		t.Fatalf("expected ErrImageDecode, got %v", err)
	}
}

func TestExtractRejectsMissingFile(t *testing.T) {
	_, err := Extract(filepath.Join(t.TempDir(), "missing.png"))
	if !errors.Is(err, models.ErrImageDecode) {
		t.Fatalf("expected ErrImageDecode for missing file, got %v", err)
	}
}
