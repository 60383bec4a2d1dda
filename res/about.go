package res

// AboutContent contains the Markdown content for the About dialog.
// This is maintained separately for easy updates.
const AboutContent = `An audio-reactive point field built with Go and Fyne.

Three rings of points around the window center follow the lows, mids and
highs of the playing track. Loud passages push the rings into waves, and
the level meters show each band next to the decaying high-frequency peak.

**Controls:**
- Open an MP3, WAV, FLAC or Ogg Vorbis file from the File menu
- Click the field to play or pause
- Right-click the field to change ring colors and idle behaviour
`

// About returns the About dialog text with the version line appended.
func About(version string) string {
	if version == "" {
		return AboutContent
	}
	return AboutContent + "\n*Version " + version + "*\n"
}
