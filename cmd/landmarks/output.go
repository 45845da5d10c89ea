package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cwbudde/algo-landmark/dsp/core"
	"github.com/cwbudde/algo-landmark/dsp/landmark"
	"github.com/cwbudde/algo-landmark/dsp/window"
)

// printWindows lists the analysis windows accepted by -window.
func printWindows(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "NAME\tENBW[bins]\tSIDELOBE[dB]\tCOHERENT GAIN"); err != nil {
		return err
	}
	for _, name := range window.Names() {
		t, err := window.ParseType(name)
		if err != nil {
			return err
		}
		m := window.Info(t)
		if _, err := fmt.Fprintf(tw, "%s\t%.2f\t%.1f\t%.4f\n", name, m.ENBW, m.HighestSidelobe, m.CoherentGain); err != nil {
			return err
		}
	}
	return tw.Flush()
}

type printer interface {
	Print(seconds float64, l landmark.Landmark) error
	Flush() error
	Count() int
}

func newPrinter(format string, w io.Writer, minAmp float64) (printer, error) {
	switch format {
	case "table":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		if _, err := fmt.Fprintln(tw, "TIME[s]\tSTEP\tBIN\tFREQ[Hz]\tAMP\tAMP[dB]"); err != nil {
			return nil, err
		}
		return &tablePrinter{tw: tw, minAmp: minAmp}, nil
	case "json":
		return &jsonPrinter{enc: json.NewEncoder(w), minAmp: minAmp}, nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

type tablePrinter struct {
	tw     *tabwriter.Writer
	minAmp float64
	count  int
}

func (p *tablePrinter) Print(seconds float64, l landmark.Landmark) error {
	if l.Amplitude < p.minAmp {
		return nil
	}
	_, err := fmt.Fprintf(p.tw, "%.3f\t%d\t%d\t%.1f\t%.4f\t%.1f\n",
		seconds, l.Time, l.Bin, l.Frequency, l.Amplitude, core.LinearToDB(l.Amplitude))
	if err != nil {
		return err
	}
	p.count++
	return nil
}

func (p *tablePrinter) Flush() error { return p.tw.Flush() }
func (p *tablePrinter) Count() int   { return p.count }

type jsonLandmark struct {
	Seconds   float64 `json:"seconds"`
	Step      int     `json:"step"`
	Bin       int     `json:"bin"`
	Frequency float64 `json:"frequency_hz"`
	Amplitude float64 `json:"amplitude"`
}

type jsonPrinter struct {
	enc    *json.Encoder
	minAmp float64
	count  int
}

func (p *jsonPrinter) Print(seconds float64, l landmark.Landmark) error {
	if l.Amplitude < p.minAmp {
		return nil
	}
	err := p.enc.Encode(jsonLandmark{
		Seconds:   seconds,
		Step:      l.Time,
		Bin:       l.Bin,
		Frequency: l.Frequency,
		Amplitude: l.Amplitude,
	})
	if err != nil {
		return err
	}
	p.count++
	return nil
}

func (p *jsonPrinter) Flush() error { return nil }
func (p *jsonPrinter) Count() int   { return p.count }
