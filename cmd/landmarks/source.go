package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-landmark/dsp/core"
	"github.com/cwbudde/algo-landmark/dsp/signal"
)

const (
	chunkFrames   = 4096
	burstPeriod   = 0.5
	burstLength   = 0.1
	burstAmp      = 0.8
	noiseFloorAmp = 0.01
)

// source streams mono float64 samples in chunks.
type source interface {
	Name() string
	SampleRate() float64
	Stream(ctx context.Context, out chan<- []float64) error
	Close() error
}

func openSource(cfg config) (source, error) {
	if cfg.in != "" {
		return openWAV(cfg.in)
	}
	return newToneSource(cfg.tone, cfg.rate, cfg.seconds)
}

type wavSource struct {
	path     string
	file     *os.File
	dec      *wav.Decoder
	format   *audio.Format
	bitDepth int
}

func openWAV(path string) (*wavSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open wav file: %w", err)
	}
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		_ = f.Close()
		return nil, fmt.Errorf("invalid wav file: %s", path)
	}
	format := dec.Format()
	if format == nil || format.NumChannels < 1 || format.SampleRate <= 0 {
		_ = f.Close()
		return nil, fmt.Errorf("unsupported wav format: %s", path)
	}
	bits := int(dec.BitDepth)
	if err := checkBitDepth(bits); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s", err, path)
	}
	return &wavSource{path: path, file: f, dec: dec, format: format, bitDepth: bits}, nil
}

// checkBitDepth accepts the integer PCM depths go-audio can decode.
func checkBitDepth(bits int) error {
	switch bits {
	case 8, 16, 24, 32:
		return nil
	default:
		return fmt.Errorf("unsupported wav bit depth %d", bits)
	}
}

func (s *wavSource) Name() string        { return s.path }
func (s *wavSource) SampleRate() float64 { return float64(s.format.SampleRate) }
func (s *wavSource) Close() error        { return s.file.Close() }

func (s *wavSource) Stream(ctx context.Context, out chan<- []float64) error {
	channels := s.format.NumChannels
	buf := &audio.IntBuffer{
		Data:   make([]int, chunkFrames*channels),
		Format: s.format,
	}

	for {
		n, err := s.dec.PCMBuffer(buf)
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("error reading PCM: %w", err)
		}
		if n > 0 {
			chunk := downmix(nil, buf.Data[:n], channels, s.bitDepth)
			select {
			case out <- chunk:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		// Only an empty read marks the end of the data chunk.
		if err != nil || n == 0 {
			return nil
		}
	}
}

// downmix averages interleaved PCM channels into mono samples in [-1, 1).
// 8-bit WAV data is unsigned and gets recentered. A trailing partial frame
// is dropped.
func downmix(dst []float64, data []int, channels, bitDepth int) []float64 {
	if channels < 1 {
		return dst[:0]
	}
	offset := 0
	if bitDepth == 8 {
		offset = 128
	}
	frames := len(data) / channels
	if cap(dst) < frames {
		dst = make([]float64, frames)
	}
	dst = dst[:frames]
	norm := 1 / (float64(int64(1)<<(bitDepth-1)) * float64(channels))
	for i := range frames {
		sum := 0
		for c := range channels {
			sum += data[i*channels+c] - offset
		}
		dst[i] = float64(sum) * norm
	}
	return dst
}

type toneSource struct {
	freq    float64
	rate    float64
	samples []float64
}

// newToneSource renders tone bursts over a low noise floor. A burst of
// burstLength seconds starts every burstPeriod seconds.
func newToneSource(freq, rate, seconds float64) (*toneSource, error) {
	n := int(seconds * rate)
	if n <= 0 {
		return nil, fmt.Errorf("synthetic signal must contain samples: %f s at %f Hz", seconds, rate)
	}
	gen := signal.NewGenerator(core.WithSampleRate(rate))
	if err := gen.Config().Validate(); err != nil {
		return nil, err
	}

	mix, err := gen.WhiteNoise(noiseFloorAmp, n)
	if err != nil {
		return nil, err
	}
	period := int(burstPeriod * rate)
	length := int(burstLength * rate)
	for start := period / 4; start < n; start += max(period, 1) {
		b, err := gen.ToneBurst(freq, burstAmp, start, length, n)
		if err != nil {
			return nil, err
		}
		if mix, err = signal.Mix(mix, b); err != nil {
			return nil, err
		}
	}
	return &toneSource{freq: freq, rate: rate, samples: mix}, nil
}

func (s *toneSource) Name() string        { return fmt.Sprintf("tone %.1f Hz", s.freq) }
func (s *toneSource) SampleRate() float64 { return s.rate }
func (s *toneSource) Close() error        { return nil }

func (s *toneSource) Stream(ctx context.Context, out chan<- []float64) error {
	for off := 0; off < len(s.samples); off += chunkFrames {
		end := min(off+chunkFrames, len(s.samples))
		select {
		case out <- s.samples[off:end]:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
