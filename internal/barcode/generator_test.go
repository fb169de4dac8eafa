package barcode

import (
	"bytes"
	"image/png"
	"testing"

	"baustelle-wms-api-server/internal/scanner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePNGRoundTrip(t *testing.T) {
	data, err := GeneratePNG("MAT-1A2B3C4D", 0)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, defaultSize, img.Bounds().Dx())

	// The scanner must read back what the label printer produced.
	code, err := scanner.NewQRDecoder().Decode(img)
	require.NoError(t, err)
	assert.Equal(t, "MAT-1A2B3C4D", code)
}

func TestGeneratePNGCustomSize(t *testing.T) {
	data, err := GeneratePNG("LOC-AABBCCDD", 128)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())
}

func TestGeneratePNGRejectsEmptyContent(t *testing.T) {
	_, err := GeneratePNG("", 256)
	assert.Error(t, err)
}
