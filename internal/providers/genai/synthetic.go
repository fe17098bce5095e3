package genai

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"
)

// SyntheticModel is reported in the metadata of fallback renders.
const SyntheticModel = "synthetic-fallback"

const syntheticSize = 512

// renderSyntheticPNG paints a deterministic mood-board placeholder: a base
// wash, palette swatches along the bottom and diagonal accents, all derived
// from the prompt hash.
func renderSyntheticPNG(prompt string) ([]byte, error) {
	seed := deterministicSeed(prompt)
	width, height := syntheticSize, syntheticSize

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	base := colorFromSeed(seed, 0)
	draw.Draw(img, img.Bounds(), &image.Uniform{base}, image.Point{}, draw.Src)

	stripeHeight := maxInt(24, height/12)
	accent := colorFromSeed(seed, 1)
	for y := 0; y < height*2/3; y += stripeHeight * 2 {
		stripe := image.Rect(0, y, width, minInt(height, y+stripeHeight))
		draw.Draw(img, stripe, &image.Uniform{softened(accent, base)}, image.Point{}, draw.Over)
	}

	swatchTop := height - height/4
	swatchWidth := width / 4
	for i := 0; i < 4; i++ {
		rect := image.Rect(i*swatchWidth, swatchTop, minInt(width, (i+1)*swatchWidth), height)
		draw.Draw(img, rect, &image.Uniform{colorFromSeed(seed, i+1)}, image.Point{}, draw.Src)
	}

	diagonal := colorFromSeed(seed, 2)
	step := maxInt(16, width/24)
	for x0 := 0; x0 < width; x0 += step {
		for y := 0; y < swatchTop; y++ {
			x := x0 + y
			if x >= width {
				break
			}
			img.Set(x, y, diagonal)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode synthetic png: %w", err)
	}
	return buf.Bytes(), nil
}

func softened(c, toward color.RGBA) color.RGBA {
	return color.RGBA{
		R: uint8((int(c.R) + int(toward.R)) / 2),
		G: uint8((int(c.G) + int(toward.G)) / 2),
		B: uint8((int(c.B) + int(toward.B)) / 2),
		A: 255,
	}
}

func colorFromSeed(seed string, shift int) color.RGBA {
	if seed == "" {
		seed = "000000"
	}
	doubled := seed + seed
	start := (shift * 6) % len(seed)
	segment := doubled[start : start+6]
	return color.RGBA{
		R: mustParseHexByte(segment[0:2]),
		G: mustParseHexByte(segment[2:4]),
		B: mustParseHexByte(segment[4:6]),
		A: 255,
	}
}

func mustParseHexByte(s string) uint8 {
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0
	}
	return uint8(v)
}

func deterministicSeed(parts ...any) string {
	hasher := sha256.New()
	for _, part := range parts {
		hasher.Write([]byte(fmt.Sprintf("%v", part)))
		hasher.Write([]byte{'|'})
	}
	return hex.EncodeToString(hasher.Sum(nil))[:16]
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
