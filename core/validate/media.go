// Package validate checks candidate media files against the label's
// release requirements before they can enter a submission.
package validate

import (
	"image"
	"io"
	"strings"

	_ "image/jpeg" // cover art is decoded as JPEG
)

const (
	// MaxCoverImageSize is the cover art ceiling (5 MiB).
	MaxCoverImageSize = 5 * 1024 * 1024
	// MaxAudioTrackSize is the audio file ceiling (100 MiB).
	MaxAudioTrackSize = 100 * 1024 * 1024

	// CoverImageDimension is the required width and height in pixels.
	CoverImageDimension = 4000
)

// User-facing messages, verbatim from the dashboard.
const (
	MsgImageWrongFormat = "Chỉ chấp nhận file JPG/JPEG"
	MsgImageTooLarge    = "File quá lớn (tối đa 5MB)"
	MsgImageWrongSize   = "Kích thước phải là 4000x4000px"
	MsgImageInvalid     = "File ảnh không hợp lệ"
	MsgAudioWrongFormat = "Chỉ chấp nhận file WAV"
	MsgAudioTooLarge    = "File audio quá lớn (tối đa 100MB)"
)

// File describes a candidate upload. ContentType is the declared MIME
// type; Size is in bytes.
type File struct {
	Name        string
	ContentType string
	Size        int64
}

// CoverImage validates cover art: declared JPEG type, at most 5 MiB, and
// exactly 4000x4000 pixels. Errors accumulate rather than short-circuit,
// except when the image cannot be decoded at all: dimensions are
// unknowable then, so the invalid-image message ends the check.
//
// Only the image header is read from r; the caller keeps ownership of the
// reader and closes it.
func CoverImage(file File, r io.Reader) []string {
	var errs []string

	ct := strings.ToLower(file.ContentType)
	if !strings.Contains(ct, "jpeg") && !strings.Contains(ct, "jpg") {
		errs = append(errs, MsgImageWrongFormat)
	}

	if file.Size > MaxCoverImageSize {
		errs = append(errs, MsgImageTooLarge)
	}

	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		errs = append(errs, MsgImageInvalid)
		return errs
	}
	if cfg.Width != CoverImageDimension || cfg.Height != CoverImageDimension {
		errs = append(errs, MsgImageWrongSize)
	}

	return errs
}

// AudioTrack validates an audio file: WAV by declared type or extension,
// at most 100 MiB. Bit depth and sample rate are not inspected.
func AudioTrack(file File) []string {
	var errs []string

	ct := strings.ToLower(file.ContentType)
	if !strings.Contains(ct, "wav") && !strings.HasSuffix(strings.ToLower(file.Name), ".wav") {
		errs = append(errs, MsgAudioWrongFormat)
	}

	if file.Size > MaxAudioTrackSize {
		errs = append(errs, MsgAudioTooLarge)
	}

	return errs
}
