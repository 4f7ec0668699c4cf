package letters

import (
	"fmt"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// ManifestName is the file written last when a dataset is saved; a dataset
// without it does not exist
const ManifestName = "manifest.yaml"

const manifestVersion = 1

// Manifest describes a saved dataset and pins the digest of every data file
type Manifest struct {
	Version         int               `yaml:"version"`
	Created         time.Time         `yaml:"created"`
	Alphabet        string            `yaml:"alphabet"`
	Width           int               `yaml:"width"`
	Height          int               `yaml:"height"`
	SamplesPerClass int               `yaml:"samples_per_class"`
	Seed            int64             `yaml:"seed"`
	Train           int               `yaml:"train"`
	Eval            int               `yaml:"eval"`
	Files           map[string]string `yaml:"files"`
}

// FileNames lists the data files in a stable order
func (m *Manifest) FileNames() []string {
	var names = make([]string, 0, len(m.Files))
	for name := range m.Files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Encode serializes the dataset into its data files and the manifest pinning them
func Encode(d *Dataset, m Manifest) (files map[string][]byte, manifest []byte, err error) {
	files = make(map[string][]byte, 4)
	if files[TrainImages], err = encodeImages(d.Train, d.Width, d.Height); err != nil {
		return nil, nil, err
	}
	if files[TrainLabels], err = encodeLabels(d.Train); err != nil {
		return nil, nil, err
	}
	if files[EvalImages], err = encodeImages(d.Eval, d.Width, d.Height); err != nil {
		return nil, nil, err
	}
	if files[EvalLabels], err = encodeLabels(d.Eval); err != nil {
		return nil, nil, err
	}

	m.Version = manifestVersion
	m.Alphabet = d.Alphabet.String()
	m.Width, m.Height = d.Width, d.Height
	m.Train, m.Eval = len(d.Train), len(d.Eval)
	m.Files = make(map[string]string, len(files))
	for name, data := range files {
		m.Files[name] = Digest(data)
	}
	manifest, err = yaml.Marshal(&m)
	if err != nil {
		return nil, nil, err
	}
	return files, manifest, nil
}

// ParseManifest decodes the manifest
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: manifest: %v", ErrCorrupt, err)
	}
	if m.Version != manifestVersion {
		return nil, fmt.Errorf("%w: manifest version %d", ErrCorrupt, m.Version)
	}
	return &m, nil
}

// Decode loads the dataset the manifest describes, fetching data files with
// get. Every file must match its digest, every image the manifest size and
// every label the manifest alphabet.
func Decode(m *Manifest, get func(name string) ([]byte, error)) (*Dataset, error) {
	alphabet, err := ParseAlphabet(m.Alphabet)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if m.Width < 1 || m.Height < 1 {
		return nil, fmt.Errorf("%w: image size %dx%d", ErrCorrupt, m.Width, m.Height)
	}
	var d = &Dataset{Alphabet: alphabet, Width: m.Width, Height: m.Height}

	load := func(name string) ([]byte, error) {
		digest, ok := m.Files[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s missing from manifest", ErrCorrupt, name)
		}
		data, err := get(name)
		if err != nil {
			return nil, err
		}
		if Digest(data) != digest {
			return nil, fmt.Errorf("%w: %s digest mismatch", ErrCorrupt, name)
		}
		return data, nil
	}
	subset := func(imagesName, labelsName string, want int) ([]Sample, error) {
		imagesData, err := load(imagesName)
		if err != nil {
			return nil, err
		}
		labelsData, err := load(labelsName)
		if err != nil {
			return nil, err
		}
		images, err := decodeImages(imagesData, m.Width, m.Height)
		if err != nil {
			return nil, err
		}
		labels, err := decodeLabels(labelsData)
		if err != nil {
			return nil, err
		}
		if len(images) != len(labels) || len(labels) != want {
			return nil, fmt.Errorf("%w: %s has %d images and %d labels, manifest says %d",
				ErrCorrupt, imagesName, len(images), len(labels), want)
		}
		var samples = make([]Sample, len(labels))
		for i, label := range labels {
			if !alphabet.Contains(label) {
				return nil, fmt.Errorf("%w: label %q not in alphabet %q", ErrCorrupt, label, m.Alphabet)
			}
			samples[i] = Sample{Label: label, Pixels: images[i]}
		}
		return samples, nil
	}
	if d.Train, err = subset(TrainImages, TrainLabels, m.Train); err != nil {
		return nil, err
	}
	if d.Eval, err = subset(EvalImages, EvalLabels, m.Eval); err != nil {
		return nil, err
	}
	return d, nil
}
