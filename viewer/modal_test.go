package viewer

import (
	"bytes"
	"context"
	"errors"
	"image"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smasonuk/panotour"
)

func nopLogger() zerolog.Logger {
	return zerolog.Nop()
}

// syncLoader answers every request immediately; refs listed in missing fail.
type syncLoader struct {
	missing map[string]bool
	refs    []string
	ctxs    []context.Context
}

func (l *syncLoader) Load(ctx context.Context, ref string, done func(image.Image, error)) {
	l.refs = append(l.refs, ref)
	l.ctxs = append(l.ctxs, ctx)
	if l.missing[ref] {
		done(nil, assert.AnError)
		return
	}
	done(image.NewRGBA(image.Rect(0, 0, 4, 4)), nil)
}

func TestInfoModalCarousel(t *testing.T) {
	loader := &syncLoader{missing: map[string]bool{"b.jpg": true}}
	m := newInfoModal(loader, nopLogger())
	assert.False(t, m.Open())

	m.PresentInfo(panotour.InfoContent{Title: "Fountain", Images: []string{"a.jpg", "b.jpg", "c.jpg"}})

	require.True(t, m.Open())
	assert.Equal(t, []string{"a.jpg", "b.jpg", "c.jpg"}, loader.refs)
	assert.Equal(t, "a.jpg", m.CurrentImage())

	m.PrevImage()
	assert.Equal(t, "c.jpg", m.CurrentImage(), "carousel wraps backwards")
	m.NextImage()
	m.NextImage()
	assert.Equal(t, "b.jpg", m.CurrentImage())

	m.mu.Lock()
	_, ok := m.decoded["b.jpg"]
	assert.False(t, ok, "failed images are left out")
	assert.Len(t, m.decoded, 2)
	m.mu.Unlock()

	m.Close()
	assert.False(t, m.Open())
	assert.Error(t, loader.ctxs[0].Err(), "closing cancels outstanding loads")
}

func TestInfoModalResetsOnNewContent(t *testing.T) {
	m := newInfoModal(&syncLoader{}, nopLogger())
	m.PresentInfo(panotour.InfoContent{Images: []string{"a.jpg", "b.jpg"}})
	m.NextImage()

	m.PresentInfo(panotour.InfoContent{Video: "v.mp4"})

	assert.True(t, m.Open())
	assert.Equal(t, "", m.CurrentImage())
	m.NextImage()
	assert.Equal(t, "", m.CurrentImage())
}

// deferredLoader keeps callbacks so the test decides when loads finish.
type deferredLoader struct {
	done []func(image.Image, error)
}

func (l *deferredLoader) Load(_ context.Context, _ string, done func(image.Image, error)) {
	l.done = append(l.done, done)
}

func TestInfoModalDropsCancelledLoads(t *testing.T) {
	var buf bytes.Buffer
	loader := &deferredLoader{}
	m := newInfoModal(loader, zerolog.New(&buf))

	m.PresentInfo(panotour.InfoContent{Images: []string{"a.jpg", "b.jpg"}})
	require.Len(t, loader.done, 2)
	m.Close()

	loader.done[0](nil, context.Canceled)
	loader.done[1](image.NewRGBA(image.Rect(0, 0, 2, 2)), nil)

	assert.Empty(t, buf.String(), "cancelled loads are not reported")
	assert.Empty(t, m.decoded, "late results of a closed modal are dropped")

	m.PresentInfo(panotour.InfoContent{Images: []string{"c.jpg"}})
	loader.done[2](nil, errors.New("boom"))
	assert.Contains(t, buf.String(), "Infospot image not loaded")
}

func TestInfoModalReleasesPreviousImages(t *testing.T) {
	m := newInfoModal(&syncLoader{}, nopLogger())
	m.PresentInfo(panotour.InfoContent{Images: []string{"a.jpg", "b.jpg"}})
	require.NotNil(t, m.image("a.jpg"))
	require.Len(t, m.images, 1)
	require.Len(t, m.decoded, 2)

	m.PresentInfo(panotour.InfoContent{Title: "Text only"})

	assert.Empty(t, m.images)
	assert.Empty(t, m.decoded)
}

func TestModalTapAction(t *testing.T) {
	// 1000×500 screen: the panel spans (100,50)-(900,450).
	testCases := []struct {
		name string
		x, y float64
		want modalAction
	}{
		{"Backdrop", 10, 10, modalClose},
		{"Backdrop right of the panel", 900, 300, modalClose},
		{"Close box", 890, 60, modalClose},
		{"Left half", 200, 300, modalPrev},
		{"Just left of centre", 499, 300, modalPrev},
		{"Right half", 500, 300, modalNext},
		{"Right edge", 800, 440, modalNext},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, modalTapAction(tc.x, tc.y, 1000, 500))
		})
	}
}

func TestInfoModalTap(t *testing.T) {
	m := newInfoModal(&syncLoader{}, nopLogger())
	m.PresentInfo(panotour.InfoContent{Images: []string{"a.jpg", "b.jpg", "c.jpg"}})

	m.Tap(800, 300, 1000, 500)
	assert.Equal(t, "b.jpg", m.CurrentImage())
	m.Tap(200, 300, 1000, 500)
	m.Tap(200, 300, 1000, 500)
	assert.Equal(t, "c.jpg", m.CurrentImage())
	assert.True(t, m.Open())

	m.Tap(10, 10, 1000, 500)
	assert.False(t, m.Open())
}

func TestWrapText(t *testing.T) {
	testCases := []struct {
		name  string
		in    string
		width int
		want  []string
	}{
		{"Empty", "", 10, nil},
		{"Fits", "one two", 10, []string{"one two"}},
		{"Wraps", "one two three four", 9, []string{"one two", "three", "four"}},
		{"Long word", "a supercalifragilistic b", 5, []string{"a", "supercalifragilistic", "b"}},
		{"Paragraphs", "one\ntwo", 20, []string{"one", "two"}},
		{"No width", "text", 0, nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, wrapText(tc.in, tc.width))
		})
	}
}
