package pptx

import "math"

const emuPerInch = 914400

func inches(v float64) int64 {
	return int64(math.Round(v * emuPerInch))
}

type box struct {
	X, Y, W, H int64
}

func rect(x, y, w, h float64) box {
	return box{X: inches(x), Y: inches(y), W: inches(w), H: inches(h)}
}

// 16:9 at 10in x 5.625in.
var (
	slideWidth  = inches(10)
	slideHeight = inches(5.625)

	accentBarBox = box{X: 0, Y: 0, W: slideWidth, H: inches(0.15)}
	titleBox     = rect(0.5, 0.5, 9, 1)
	bulletsBox   = rect(0.5, 1.8, 5, 3)
	imageBox     = rect(6, 1.8, 3.5, 3)
	captionBox   = rect(6, 4.85, 3.5, 0.2)
)

const (
	backgroundColor = "0F111A"
	accentColor     = "38BDF8"
	titleColor      = "FFFFFF"
	bulletColor     = "E2E8F0"
	captionColor    = "94A3B8"
	fontFace        = "Arial"

	titleSize   = 3200
	bulletSize  = 1800
	captionSize = 800

	bulletSpaceAfter  = 800
	bulletLineSpacing = 150000
)

// crop is a srcRect in thousandths of a percent of the source image.
type crop struct {
	L, T, R, B int
}

// coverCrop trims the source so it fills the target box without distortion,
// keeping the centre of the image.
func coverCrop(imgW, imgH int, target box) crop {
	if imgW <= 0 || imgH <= 0 || target.W <= 0 || target.H <= 0 {
		return crop{}
	}

	imgAspect := float64(imgW) / float64(imgH)
	boxAspect := float64(target.W) / float64(target.H)

	switch {
	case imgAspect > boxAspect:
		side := int((1 - boxAspect/imgAspect) / 2 * 100000)
		return crop{L: side, R: side}
	case imgAspect < boxAspect:
		side := int((1 - imgAspect/boxAspect) / 2 * 100000)
		return crop{T: side, B: side}
	default:
		return crop{}
	}
}
