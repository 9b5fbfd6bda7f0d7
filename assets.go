package panotour

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"path"
	"strings"

	_ "github.com/ftrvxmtrx/tga"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/singleflight"
)

// FileLoader decodes panorama and icon images from a file system. Concurrent
// requests for the same ref share one decode. Successful results are kept in
// a bounded LRU cache; failures are not, so a retry hits the disk again.
type FileLoader struct {
	fsys    fs.FS
	maxSize int
	log     zerolog.Logger

	group singleflight.Group
	items *lru.Cache[string, image.Image]
}

// NewFileLoader creates a loader reading from fsys. Images wider or taller
// than maxSize are scaled down to fit; zero disables scaling. At most
// cacheEntries decoded images are kept; zero disables caching.
func NewFileLoader(fsys fs.FS, maxSize, cacheEntries int, log zerolog.Logger) *FileLoader {
	l := &FileLoader{
		fsys:    fsys,
		maxSize: maxSize,
		log:     log,
	}
	if cacheEntries > 0 {
		// lru.New only fails for a non-positive size.
		l.items, _ = lru.New[string, image.Image](cacheEntries)
	}
	return l
}

// Cached reports whether ref is currently held in the cache.
func (l *FileLoader) Cached(ref string) bool {
	name, err := cleanRef(ref)
	if err != nil || l.items == nil {
		return false
	}
	return l.items.Contains(name)
}

// Load decodes ref on a new goroutine and hands the result to done.
func (l *FileLoader) Load(ctx context.Context, ref string, done func(image.Image, error)) {
	go func() {
		done(l.Decode(ctx, ref))
	}()
}

// Decode returns the image for ref, blocking until it is decoded or ctx ends.
func (l *FileLoader) Decode(ctx context.Context, ref string) (image.Image, error) {
	name, err := cleanRef(ref)
	if err != nil {
		return nil, err
	}

	if l.items != nil {
		if img, ok := l.items.Get(name); ok {
			return img, nil
		}
	}

	ch := l.group.DoChan(name, func() (interface{}, error) {
		return l.decodeFile(name)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(image.Image), nil
	}
}

func (l *FileLoader) decodeFile(name string) (image.Image, error) {
	raw, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	img = l.fit(img)

	if l.items != nil {
		if cached, exists, _ := l.items.PeekOrAdd(name, img); exists {
			return cached, nil
		}
	}

	b := img.Bounds()
	l.log.Debug().
		Str("ref", name).
		Str("format", format).
		Int("width", b.Dx()).
		Int("height", b.Dy()).
		Msg("Image decoded")
	return img, nil
}

// fit scales img down so neither side exceeds maxSize.
func (l *FileLoader) fit(img image.Image) image.Image {
	b := img.Bounds()
	if l.maxSize <= 0 || (b.Dx() <= l.maxSize && b.Dy() <= l.maxSize) {
		return img
	}

	w, h := b.Dx(), b.Dy()
	if w >= h {
		h = max(1, h*l.maxSize/w)
		w = l.maxSize
	} else {
		w = max(1, w*l.maxSize/h)
		h = l.maxSize
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// cleanRef turns a content reference such as "./img/a.jpg" into an fs.FS name.
func cleanRef(ref string) (string, error) {
	name := strings.TrimSpace(ref)
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Clean(strings.TrimLeft(name, "/"))
	if name == "." || !fs.ValidPath(name) {
		return "", fmt.Errorf("invalid asset reference %q", ref)
	}
	return name, nil
}
