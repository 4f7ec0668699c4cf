// Package trainer fits every hashtron of a letter ensemble on CPU, without
// backpropagation or floating point, and evaluates the result.
package trainer
