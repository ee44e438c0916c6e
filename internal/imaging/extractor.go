// Package imaging computes small visual summaries from stored camera
// images. Extraction is a fixed signal-processing step, deterministic for
// identical input bytes.
package imaging

import (
	"fmt"
	"math"

	"gocv.io/x/gocv"

	"watchtower/internal/models"
)

// Canny thresholds on the 0-255 intensity scale
const (
	edgeThresholdLow  = 50
	edgeThresholdHigh = 150
)

// Extract decodes the image at path and returns its visual summary:
// dimensions, mean grayscale brightness rounded to two decimals, and the
// number of edge pixels found by Canny edge detection. An unreadable or
// non-image file fails with models.ErrImageDecode.
func Extract(path string) (models.ImageMetadata, error) {
	img := gocv.IMRead(path, gocv.IMReadColor)
	if img.Empty() {
		return models.ImageMetadata{}, fmt.Errorf("%w: %s", models.ErrImageDecode, path)
	}
	defer img.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	brightness := gray.Mean().Val1

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, edgeThresholdLow, edgeThresholdHigh)

	return models.ImageMetadata{
		Width:      img.Cols(),
		Height:     img.Rows(),
		Brightness: math.Round(brightness*100) / 100,
		EdgePixels: gocv.CountNonZero(edges),
	}, nil
}
