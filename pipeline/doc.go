// Package pipeline implements the two phases of the letter classifier:
// SaveDatasets renders and stores a labeled dataset, TrainModel fits and
// evaluates a model on it. Both take their whole configuration explicitly and
// only share the artifacts in the store.
//
// Every failure is an *Error of one of the kinds Configuration, Storage,
// MissingDataset or Training; nothing is retried.
package pipeline
