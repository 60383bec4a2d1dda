package live

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"

	"github.com/tejashwikalptaru/gopulse/internal/domain"
)

// SupportedExtensions lists the file extensions Load can decode.
var SupportedExtensions = []string{".mp3", ".wav", ".flac", ".ogg"}

// IsSupported reports whether path has a decodable extension.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SupportedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// decodeFile opens and decodes path by extension.
// Every beep decoder closes its reader on Close, so the returned streamer owns the file.
func decodeFile(path string) (beep.StreamSeekCloser, beep.Format, error) {
	if path == "" {
		return nil, beep.Format{}, domain.ErrInvalidFilePath
	}
	if !IsSupported(path) {
		return nil, beep.Format{}, domain.NewAudioEngineError("decode", path,
			fmt.Sprintf("unsupported extension %q", filepath.Ext(path)), domain.ErrUnsupportedFormat)
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, beep.Format{}, domain.NewAudioEngineError("decode", path, "file not found", domain.ErrFileNotFound)
		}
		return nil, beep.Format{}, domain.NewAudioEngineError("decode", path, "open failed", err)
	}

	var (
		stream beep.StreamSeekCloser
		format beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		stream, format, err = mp3.Decode(f)
	case ".wav":
		stream, format, err = wav.Decode(f)
	case ".flac":
		stream, format, err = flac.Decode(f)
	case ".ogg":
		stream, format, err = vorbis.Decode(f)
	}
	if err != nil {
		_ = f.Close()
		return nil, beep.Format{}, domain.NewAudioEngineError("decode", path, "decoder rejected file", errors.Join(domain.ErrUnsupportedFormat, err))
	}
	return stream, format, nil
}
