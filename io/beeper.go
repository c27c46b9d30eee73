package io

import (
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	TONE_HZ    = 440  // Pitch of the beep.
	WAV_RATE   = 8000 // Default recording sample rate.
	WAV_DEPTH  = 16   // Recording bits per sample.
	WAV_VOLUME = 8192 // Square wave amplitude.
	WAV_FORMAT = 1    // PCM
	TICK_HZ    = 60   // SetTone calls per second.
	WAV_FLUSH  = 60   // Ticks buffered between encoder writes.
	BELL       = "\a"
)

// Bell rings the terminal bell whenever the tone starts.
type Bell struct {
	Output io.Writer

	on bool
}

var _ Beeper = (*Bell)(nil)

func (b *Bell) SetTone(on bool) {
	if on && !b.on {
		io.WriteString(b.Output, BELL)
	}
	b.on = on
}

// WavRecorder records the tone as a mono 16-bit PCM WAV stream, one
// 1/60th second frame per SetTone call.
type WavRecorder struct {
	enc   *wav.Encoder
	rate  int
	phase int
	data  []int
	ticks int
	err   error
}

var _ Beeper = (*WavRecorder)(nil)

// NewWavRecorder starts a recording at 'rate' samples per second, or
// WAV_RATE if rate is zero.
func NewWavRecorder(ws io.WriteSeeker, rate int) (wr *WavRecorder) {
	if rate == 0 {
		rate = WAV_RATE
	}

	wr = &WavRecorder{
		enc:  wav.NewEncoder(ws, rate, WAV_DEPTH, 1, WAV_FORMAT),
		rate: rate,
	}

	return
}

func (wr *WavRecorder) SetTone(on bool) {
	period := wr.rate / TONE_HZ
	for range wr.rate / TICK_HZ {
		sample := 0
		if on {
			sample = WAV_VOLUME
			if wr.phase >= period/2 {
				sample = -WAV_VOLUME
			}
		}
		wr.data = append(wr.data, sample)
		wr.phase = (wr.phase + 1) % period
	}

	wr.ticks++
	if wr.ticks%WAV_FLUSH == 0 {
		wr.flush()
	}
}

func (wr *WavRecorder) flush() {
	if wr.err != nil {
		return
	}

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: wr.rate},
		Data:           wr.data,
		SourceBitDepth: WAV_DEPTH,
	}
	wr.err = wr.enc.Write(buf)
	wr.data = wr.data[:0]
}

// Err returns the first encoding error.
func (wr *WavRecorder) Err() error {
	return wr.err
}

// Close flushes and finalizes the recording.
func (wr *WavRecorder) Close() (err error) {
	wr.flush()
	if wr.err != nil {
		err = wr.err
		return
	}

	err = wr.enc.Close()
	return
}
