package fs

import (
	"fmt"
	"net/url"
	"path"
	"strings"
	"sync"
)

// Location is a scheme-qualified path such as ns:///warehouse or
// s3://bucket/prefix. A bare path is a file location.
type Location struct {
	Scheme string
	Host   string
	Path   string
}

func ParseLocation(s string) (Location, error) {
	if s == "" {
		return Location{}, fmt.Errorf("empty location")
	}

	u, err := url.Parse(s)
	// single letter schemes are windows drive letters
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		return Location{Scheme: "file", Path: s}, nil
	}

	p := u.Path
	if p == "" {
		p = "/"
	}
	return Location{
		Scheme: strings.ToLower(u.Scheme),
		Host:   u.Host,
		Path:   path.Clean("/" + p),
	}, nil
}

func (l Location) String() string {
	if l.Scheme == "file" && l.Host == "" {
		return l.Path
	}
	return l.Scheme + "://" + l.Host + l.Path
}

// Join appends slash separated elements to the location's path.
func (l Location) Join(elem ...string) Location {
	l.Path = path.Join(append([]string{l.Path}, elem...)...)
	return l
}

// Resolver maps locations to the filesystem that serves them.
type Resolver interface {
	Resolve(location string) (FS, Location, error)
}

// Registry is a Resolver keyed by scheme, or by scheme and host
// (e.g. "s3://bucket") when one scheme is served by several filesystems.
type Registry struct {
	mu  sync.RWMutex
	fss map[string]FS
}

func NewRegistry() *Registry {
	return &Registry{fss: make(map[string]FS)}
}

func (r *Registry) Register(key string, f FS) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fss[strings.ToLower(key)] = f
}

func (r *Registry) Resolve(location string) (FS, Location, error) {
	loc, err := ParseLocation(location)
	if err != nil {
		return nil, Location{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if loc.Host != "" {
		if f, ok := r.fss[loc.Scheme+"://"+strings.ToLower(loc.Host)]; ok {
			return f, loc, nil
		}
	}
	if f, ok := r.fss[loc.Scheme]; ok {
		return f, loc, nil
	}
	return nil, loc, fmt.Errorf("%w: %q", ErrUnknownScheme, location)
}
