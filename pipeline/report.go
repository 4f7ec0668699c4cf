package pipeline

import (
	"bytes"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/neurlang/letters/config"
	"github.com/neurlang/letters/datasets/letters"
	"github.com/neurlang/letters/trainer"
)

// Report is the report.toml written next to the model
type Report struct {
	RunID    string    `toml:"run_id"`
	Created  time.Time `toml:"created"`
	Alphabet string    `toml:"alphabet"`

	Accuracy float64 `toml:"accuracy"`
	Correct  int     `toml:"correct"`
	Total    int     `toml:"total"`
	Train    int     `toml:"train"`
	Digest   string  `toml:"digest"`

	Model   ReportModel                    `toml:"model"`
	Classes map[string]trainer.ClassResult `toml:"classes"`
}

// ReportModel describes the fitted ensemble
type ReportModel struct {
	Width         int     `toml:"width"`
	Height        int     `toml:"height"`
	Window        int     `toml:"window"`
	Threshold     int     `toml:"threshold"`
	Seed          int64   `toml:"seed"`
	Hashtrons     int     `toml:"hashtrons"`
	ProgramLength int     `toml:"program_length"`
	FilterBytes   int     `toml:"filter_bytes"`
	FitSeconds    float64 `toml:"fit_seconds"`
}

func newReport(s *TrainSummary, d *letters.Dataset, cfg *config.Config, now time.Time) *Report {
	return &Report{
		RunID:    s.RunID,
		Created:  now.UTC(),
		Alphabet: d.Alphabet.String(),
		Accuracy: s.Accuracy,
		Correct:  s.Correct,
		Total:    s.Total,
		Train:    len(d.Train),
		Digest:   s.Digest,
		Model: ReportModel{
			Width:         d.Width,
			Height:        d.Height,
			Window:        cfg.Model.Window,
			Threshold:     cfg.Model.Threshold,
			Seed:          cfg.Model.Seed,
			Hashtrons:     s.Stats.Hashtrons,
			ProgramLength: s.Stats.ProgramLength,
			FilterBytes:   s.Stats.FilterBytes,
			FitSeconds:    s.Stats.Duration.Seconds(),
		},
		Classes: s.PerClass,
	}
}

func (r *Report) encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseReport decodes a report.toml
func ParseReport(data []byte) (*Report, error) {
	var r Report
	if _, err := toml.Decode(string(data), &r); err != nil {
		return nil, err
	}
	return &r, nil
}
