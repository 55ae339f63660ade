// Package session owns the playback session lifecycle: at most one active
// source, superseded starts swallowed through a generation counter, and a
// sampler that reads analysis frames only while a session is fully wired.
package session

import (
	"context"
	"net/url"
	"strings"
)

// Kind classifies a Source.
type Kind int

const (
	KindNone Kind = iota
	KindFile
	KindStream
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindStream:
		return "stream"
	default:
		return "none"
	}
}

// Source is something a Loader can open: a local path or a URL, plus the
// label shown while it plays.
type Source struct {
	Label string
	Path  string
	URL   string
}

// Kind reports whether the source is a stream (URL) or a file (Path).
func (s Source) Kind() Kind {
	switch {
	case s.URL != "":
		return KindStream
	case s.Path != "":
		return KindFile
	default:
		return KindNone
	}
}

// IsURL reports whether loc is an http(s) URL.
func IsURL(loc string) bool {
	u, err := url.Parse(strings.TrimSpace(loc))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// SourceFor builds a Source from a location that is either a URL or a path.
func SourceFor(label, loc string) Source {
	loc = strings.TrimSpace(loc)
	if IsURL(loc) {
		return Source{Label: label, URL: loc}
	}
	return Source{Label: label, Path: loc}
}

// Node is an analysis node: it fills byte frames on demand.
type Node interface {
	FrequencyBinCount() int
	ByteFrequencyData(dst []byte)
	ByteTimeDomainData(dst []byte)
}

// Stream is a playing source.
type Stream interface {
	Node() Node
	// Done closes when playback ends naturally.
	Done() <-chan struct{}
	Close()
}

// Loader opens a Source. It must honour ctx cancellation by releasing what
// it acquired and returning ctx.Err().
type Loader interface {
	Load(ctx context.Context, src Source) (Stream, error)
}
