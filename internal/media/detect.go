package media

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/olivier-w/orbviz/internal/player"
	"github.com/olivier-w/orbviz/internal/session"
)

var audioExts = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".flac": true,
	".ogg":  true,
}

// IsSupportedExt returns true if the extension is a supported playable media format.
func IsSupportedExt(ext string) bool {
	return audioExts[strings.ToLower(ext)]
}

// SupportedExtsList returns a human-readable list of supported playable media formats.
func SupportedExtsList() string {
	return ".mp3, .wav, .flac, .ogg"
}

// CheckPath reports why path cannot be played, or nil if it can.
func CheckPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !IsSupportedExt(ext) {
		return fmt.Errorf("unsupported format %s (supported: %s)", ext, SupportedExtsList())
	}
	return nil
}

// Resolve turns a path or URL into a session.Source. Relative paths are
// joined to dir. An empty label is filled from the file's tags or name.
func Resolve(label, loc, dir string) session.Source {
	loc = strings.TrimSpace(loc)
	if session.IsURL(loc) {
		if label == "" {
			label = loc
		}
		return session.Source{Label: label, URL: loc}
	}
	if dir != "" && !filepath.IsAbs(loc) {
		loc = filepath.Join(dir, loc)
	}
	if label == "" {
		label = player.Label(loc)
	}
	return session.Source{Label: label, Path: loc}
}

// ParseDrop extracts a playable location from text pasted into the
// terminal, which is how most terminals deliver a dropped file.
func ParseDrop(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if i := strings.IndexAny(text, "\r\n"); i >= 0 {
		text = strings.TrimSpace(text[:i])
	}
	if len(text) >= 2 {
		if q := text[0]; (q == '\'' || q == '"') && text[len(text)-1] == q {
			text = text[1 : len(text)-1]
		}
	}
	if text == "" {
		return "", false
	}
	if session.IsURL(text) {
		return text, true
	}
	if strings.HasPrefix(text, "file://") {
		u, err := url.Parse(text)
		if err != nil {
			return "", false
		}
		text = u.Path
	} else {
		text = strings.ReplaceAll(text, `\ `, " ")
	}
	if !IsSupportedExt(filepath.Ext(text)) {
		return "", false
	}
	return text, true
}

// Scan returns the playable files directly inside dir, sorted by name
// (case-insensitive).
func Scan(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot read directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if IsSupportedExt(filepath.Ext(e.Name())) {
			files = append(files, e.Name())
		}
	}
	sort.Slice(files, func(i, j int) bool {
		return strings.ToLower(files[i]) < strings.ToLower(files[j])
	})
	return files, nil
}
