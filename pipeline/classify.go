package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image"
	_ "image/png"
	"io"

	"github.com/neurlang/letters/config"
	"github.com/neurlang/letters/datasets/letters"
	"github.com/neurlang/letters/net/ensemble"
	"github.com/neurlang/letters/storage"
)

// Prediction is the answer of the model for one image
type Prediction struct {
	Source     string
	Letter     byte
	Confidence float64
}

// LoadModel reads the model under the model prefix
func LoadModel(ctx context.Context, deps Deps, cfg *config.Config) (*ensemble.Ensemble, error) {
	const op = "classify"
	data, err := deps.Store.Get(ctx, storage.Join(cfg.Model.Prefix, ModelName))
	if errors.Is(err, storage.ErrNotExist) {
		return nil, newError(KindStorage, op, "no model at "+deps.Store.Location(cfg.Model.Prefix)+", run train-model first", err)
	}
	if err != nil {
		return nil, newError(KindStorage, op, "read model", err)
	}
	model, err := ensemble.ReadCompressed(bytes.NewReader(data))
	if err != nil {
		return nil, newError(KindStorage, op, "corrupt model", err)
	}
	return model, nil
}

// ClassifyImage decodes a PNG (or any registered format) and classifies it
func ClassifyImage(model *ensemble.Ensemble, source string, r io.Reader) (Prediction, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return Prediction{}, newError(KindStorage, "classify", "decode "+source, err)
	}
	pixels := letters.FromImage(img, model.Geometry.Width, model.Geometry.Height)
	letter, confidence := model.Classify(pixels)
	return Prediction{Source: source, Letter: letter, Confidence: confidence}, nil
}

// ClassifyLetter renders the letter in the face and classifies it
func ClassifyLetter(model *ensemble.Ensemble, letter byte, face string) (Prediction, error) {
	renderer, err := letters.NewRenderer(model.Geometry.Width, model.Geometry.Height, []string{face})
	if err != nil {
		return Prediction{}, newError(KindConfiguration, "classify", "font face", err)
	}
	got, confidence := model.Classify(renderer.Glyph(letter, 0))
	return Prediction{Source: string(letter), Letter: got, Confidence: confidence}, nil
}
