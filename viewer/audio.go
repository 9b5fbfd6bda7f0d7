package viewer

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
	"github.com/rs/zerolog"
)

const sampleRate = 44100

// loopStream is a decoded track that can be looped.
type loopStream interface {
	io.ReadSeeker
	Length() int64
}

// audioPlayer loops the background track of the current panorama.
type audioPlayer struct {
	ctx  *audio.Context
	fsys fs.FS
	log  zerolog.Logger

	current string
	player  *audio.Player
}

// newAudioPlayer creates the player. ctx may be nil to run without sound;
// ebiten allows only one audio context per process.
func newAudioPlayer(ctx *audio.Context, fsys fs.FS, log zerolog.Logger) *audioPlayer {
	return &audioPlayer{ctx: ctx, fsys: fsys, log: log}
}

// ChangeAudio switches to ref. Asking for the track already playing keeps it
// going; unsupported or broken files are logged and leave silence.
func (a *audioPlayer) ChangeAudio(ref string) {
	if ref == a.current {
		return
	}
	a.stop()
	a.current = ref
	if a.ctx == nil {
		return
	}

	stream, err := a.open(ref)
	if err != nil {
		a.log.Warn().Err(err).Str("ref", ref).Msg("Background audio skipped")
		return
	}
	player, err := a.ctx.NewPlayer(audio.NewInfiniteLoop(stream, stream.Length()))
	if err != nil {
		a.log.Warn().Err(err).Str("ref", ref).Msg("Failed to create audio player")
		return
	}
	player.Play()
	a.player = player
	a.log.Info().Str("ref", ref).Msg("Background audio started")
}

func (a *audioPlayer) open(ref string) (loopStream, error) {
	decode, err := decoderFor(ref)
	if err != nil {
		return nil, err
	}
	name := path.Clean(strings.TrimLeft(ref, "/"))
	raw, err := fs.ReadFile(a.fsys, name)
	if err != nil {
		return nil, err
	}
	return decode(bytes.NewReader(raw))
}

// decoderFor picks a decoder by file extension.
func decoderFor(ref string) (func(io.Reader) (loopStream, error), error) {
	switch strings.ToLower(path.Ext(ref)) {
	case ".mp3":
		return func(r io.Reader) (loopStream, error) {
			return mp3.DecodeWithSampleRate(sampleRate, r)
		}, nil
	case ".ogg", ".oga":
		return func(r io.Reader) (loopStream, error) {
			return vorbis.DecodeWithSampleRate(sampleRate, r)
		}, nil
	case ".wav":
		return func(r io.Reader) (loopStream, error) {
			return wav.DecodeWithSampleRate(sampleRate, r)
		}, nil
	}
	return nil, fmt.Errorf("unsupported audio format %q", path.Ext(ref))
}

func (a *audioPlayer) stop() {
	if a.player == nil {
		return
	}
	if err := a.player.Close(); err != nil {
		a.log.Debug().Err(err).Msg("Closing audio player")
	}
	a.player = nil
}

func (a *audioPlayer) Close() {
	a.stop()
	a.current = ""
}
