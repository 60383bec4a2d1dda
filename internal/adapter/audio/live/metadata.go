package live

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhowden/tag"

	"github.com/tejashwikalptaru/gopulse/internal/domain"
)

// extractMetadata reads tags from an audio file. Files without readable tags
// fall back to the file name as title.
func extractMetadata(filePath string) (*domain.MusicTrack, error) {
	if filePath == "" {
		return nil, domain.ErrInvalidFilePath
	}
	if _, err := os.Stat(filePath); errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrFileNotFound
	}

	filename := filepath.Base(filePath)
	ext := filepath.Ext(filename)
	track := &domain.MusicTrack{
		ID:         generateTrackID(),
		FilePath:   filePath,
		Title:      strings.TrimSuffix(filename, ext),
		FileFormat: strings.TrimPrefix(strings.ToLower(ext), "."),
	}

	file, err := os.Open(filePath)
	if err != nil {
		return track, nil
	}
	defer file.Close()

	metadata, err := tag.ReadFrom(file)
	if err != nil || metadata == nil {
		return track, nil
	}

	if title := strings.TrimSpace(metadata.Title()); title != "" {
		track.Title = title
	}
	if artist := strings.TrimSpace(metadata.Artist()); artist != "" {
		track.Artist = artist
	}
	if album := strings.TrimSpace(metadata.Album()); album != "" {
		track.Album = album
	}
	return track, nil
}

// generateTrackID generates a unique ID for a track
func generateTrackID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		b = []byte(fmt.Sprintf("%d", time.Now().UnixNano()))
	}
	return fmt.Sprintf("track-%s", hex.EncodeToString(b))
}
