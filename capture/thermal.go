// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package capture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
)

// ExtractChannel decodes data, keeps one colour channel (0 red, 1
// green, 2 blue) as an 8-bit grayscale image, and encodes it in format
// ("png", "jpeg" or "jpg"). PNG output is lossless.
func ExtractChannel(data []byte, channel int, format string) ([]byte, error) {
	if channel < 0 || channel > 2 {
		return nil, fmt.Errorf("capture: channel %d out of range [0, 2]", channel)
	}

	source, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("capture: decoding image: %w", err)
	}

	bounds := source.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			// Straight alpha: the stored channel value, not premultiplied.
			pixel := color.NRGBAModel.Convert(source.At(x, y)).(color.NRGBA)
			components := [3]uint8{pixel.R, pixel.G, pixel.B}
			gray.Pix[gray.PixOffset(x, y)] = components[channel]
		}
	}

	var out bytes.Buffer
	switch strings.ToLower(format) {
	case "png":
		err = png.Encode(&out, gray)
	case "jpeg", "jpg":
		err = jpeg.Encode(&out, gray, &jpeg.Options{Quality: 95})
	default:
		return nil, fmt.Errorf("capture: unsupported image format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("capture: encoding %s: %w", format, err)
	}
	return out.Bytes(), nil
}
