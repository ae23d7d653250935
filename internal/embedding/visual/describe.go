package visual

import (
	"image"
	"math"
)

// maxSamples bounds the sampling grid along the longer image side.
const maxSamples = 64

// colorOrder fixes the order in which colour words are emitted.
var colorOrder = []string{
	"black", "white", "gray", "red", "orange", "brown", "yellow",
	"green", "cyan", "blue", "purple", "pink",
}

// Describe summarizes an image as words: dominant colours (repeated in
// proportion to their share), overall brightness, saturation and orientation.
// The output depends only on pixel values and size.
func Describe(img image.Image) []string {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil
	}
	step := max(w, h) / maxSamples
	if step < 1 {
		step = 1
	}

	counts := make(map[string]int, len(colorOrder))
	total := 0
	var sumV, sumS float64
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			r, g, bl, _ := img.At(x, y).RGBA()
			hue, sat, val := hsv(float64(r)/0xffff, float64(g)/0xffff, float64(bl)/0xffff)
			counts[colorName(hue, sat, val)]++
			sumV += val
			sumS += sat
			total++
		}
	}

	var words []string
	for _, name := range colorOrder {
		frac := float64(counts[name]) / float64(total)
		if frac < 0.05 {
			continue
		}
		n := int(math.Round(frac * 10))
		if n < 1 {
			n = 1
		}
		for i := 0; i < n; i++ {
			words = append(words, name)
		}
	}

	meanV, meanS := sumV/float64(total), sumS/float64(total)
	switch {
	case meanV < 0.35:
		words = append(words, "dark")
	case meanV > 0.65:
		words = append(words, "bright")
	}
	switch {
	case meanS > 0.5:
		words = append(words, "colorful")
	case meanS < 0.15:
		words = append(words, "muted")
	}
	switch {
	case float64(w) > 1.2*float64(h):
		words = append(words, "landscape")
	case float64(h) > 1.2*float64(w):
		words = append(words, "portrait")
	default:
		words = append(words, "square")
	}
	return words
}

// hsv converts RGB in [0,1] to hue in degrees, saturation and value in [0,1].
func hsv(r, g, b float64) (float64, float64, float64) {
	hi := math.Max(r, math.Max(g, b))
	lo := math.Min(r, math.Min(g, b))
	delta := hi - lo
	if hi == 0 {
		return 0, 0, 0
	}
	s := delta / hi
	if delta == 0 {
		return 0, s, hi
	}
	var h float64
	switch hi {
	case r:
		h = math.Mod((g-b)/delta, 6)
	case g:
		h = (b-r)/delta + 2
	default:
		h = (r-g)/delta + 4
	}
	h *= 60
	if h < 0 {
		h += 360
	}
	return h, s, hi
}

func colorName(h, s, v float64) string {
	switch {
	case v < 0.2:
		return "black"
	case s < 0.15 && v > 0.85:
		return "white"
	case s < 0.15:
		return "gray"
	}
	switch {
	case h < 15 || h >= 345:
		return "red"
	case h < 45:
		if v < 0.6 {
			return "brown"
		}
		return "orange"
	case h < 70:
		return "yellow"
	case h < 170:
		return "green"
	case h < 200:
		return "cyan"
	case h < 260:
		return "blue"
	case h < 300:
		return "purple"
	default:
		return "pink"
	}
}
