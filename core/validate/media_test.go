package validate

import (
	"bytes"
	"image"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeJPEG(t *testing.T, width, height int) []byte {
	t.Helper()

	var buf bytes.Buffer
	img := image.NewGray(image.Rect(0, 0, width, height))
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 10}))
	return buf.Bytes()
}

func TestCoverImage_Valid(t *testing.T) {
	data := encodeJPEG(t, 4000, 4000)
	file := File{Name: "cover.jpg", ContentType: "image/jpeg", Size: int64(len(data))}

	errs := CoverImage(file, bytes.NewReader(data))
	assert.Empty(t, errs)
}

func TestCoverImage_WrongDimensions(t *testing.T) {
	data := encodeJPEG(t, 3000, 3000)
	file := File{Name: "cover.jpg", ContentType: "image/jpeg", Size: int64(len(data))}

	errs := CoverImage(file, bytes.NewReader(data))
	assert.Equal(t, []string{MsgImageWrongSize}, errs)
}

func TestCoverImage_WrongFormat(t *testing.T) {
	data := encodeJPEG(t, 4000, 4000)
	file := File{Name: "cover.png", ContentType: "image/png", Size: int64(len(data))}

	errs := CoverImage(file, bytes.NewReader(data))
	assert.Contains(t, errs, MsgImageWrongFormat)
}

func TestCoverImage_TooLarge(t *testing.T) {
	data := encodeJPEG(t, 4000, 4000)
	file := File{Name: "cover.jpg", ContentType: "image/jpeg", Size: MaxCoverImageSize + 1}

	errs := CoverImage(file, bytes.NewReader(data))
	assert.Equal(t, []string{MsgImageTooLarge}, errs)
}

func TestCoverImage_AccumulatesErrors(t *testing.T) {
	data := encodeJPEG(t, 1000, 1000)
	file := File{Name: "cover.png", ContentType: "image/png", Size: MaxCoverImageSize + 1}

	errs := CoverImage(file, bytes.NewReader(data))
	assert.Equal(t, []string{MsgImageWrongFormat, MsgImageTooLarge, MsgImageWrongSize}, errs)
}

func TestCoverImage_Undecodable(t *testing.T) {
	garbage := []byte("not an image at all")
	file := File{Name: "cover.jpg", ContentType: "image/jpeg", Size: int64(len(garbage))}

	errs := CoverImage(file, bytes.NewReader(garbage))
	assert.Equal(t, []string{MsgImageInvalid}, errs)
}

func TestAudioTrack(t *testing.T) {
	tests := []struct {
		name string
		file File
		want []string
	}{
		{
			name: "valid wav",
			file: File{Name: "song.wav", ContentType: "audio/wav", Size: 40 << 20},
			want: nil,
		},
		{
			name: "wav by extension only",
			file: File{Name: "song.WAV", ContentType: "application/octet-stream", Size: 10 << 20},
			want: nil,
		},
		{
			name: "wrong format",
			file: File{Name: "song.mp3", ContentType: "audio/mpeg", Size: 5 << 20},
			want: []string{MsgAudioWrongFormat},
		},
		{
			name: "too large",
			file: File{Name: "song.wav", ContentType: "audio/wav", Size: MaxAudioTrackSize + 1},
			want: []string{MsgAudioTooLarge},
		},
		{
			name: "wrong format and too large",
			file: File{Name: "song.flac", ContentType: "audio/flac", Size: MaxAudioTrackSize + 1},
			want: []string{MsgAudioWrongFormat, MsgAudioTooLarge},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AudioTrack(tt.file))
		})
	}
}
