package evaluation

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yegors/readback-check/internal/models"
)

// ErrEmptyCorpus is returned when there is nothing to evaluate
var ErrEmptyCorpus = errors.New("corpus has no exchanges")

//go:embed corpus.yaml
var defaultCorpus []byte

// Exchange is one reference ATC instruction with the pilot's readback
type Exchange struct {
	ATC           string             `yaml:"atc" json:"atc"`
	Pilot         string             `yaml:"pilot" json:"pilot"`
	Callsign      string             `yaml:"callsign,omitempty" json:"callsign,omitempty"`
	ExpectedPhase models.FlightPhase `yaml:"expected_phase,omitempty" json:"expected_phase,omitempty"`
}

// Corpus is a named set of reference exchanges
type Corpus struct {
	Name      string     `yaml:"name"`
	Exchanges []Exchange `yaml:"exchanges"`
}

// DefaultCorpus returns the built-in reference corpus
func DefaultCorpus() (*Corpus, error) {
	return LoadCorpusFromReader(bytes.NewReader(defaultCorpus))
}

// LoadCorpus reads a YAML corpus file
func LoadCorpus(path string) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus %q: %w", path, err)
	}
	defer f.Close()

	c, err := LoadCorpusFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse corpus %q: %w", path, err)
	}
	return c, nil
}

// LoadCorpusFromReader decodes a YAML corpus, rejecting unknown keys,
// unknown phases and exchanges without an instruction
func LoadCorpusFromReader(r io.Reader) (*Corpus, error) {
	var c Corpus
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyCorpus
		}
		return nil, fmt.Errorf("failed to decode corpus yaml: %w", err)
	}
	if len(c.Exchanges) == 0 {
		return nil, ErrEmptyCorpus
	}

	var errs []error
	for i, x := range c.Exchanges {
		if x.ATC == "" {
			errs = append(errs, fmt.Errorf("exchange %d: atc is required", i))
		}
		if x.ExpectedPhase != "" && x.ExpectedPhase.Index() < 0 {
			errs = append(errs, fmt.Errorf("exchange %d: unknown phase %q", i, x.ExpectedPhase))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &c, nil
}
