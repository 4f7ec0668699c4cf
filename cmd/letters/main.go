// Command letters prepares ASCII letter datasets and trains hashtron models
// on them.
//
//	letters save-datasets --alphabet AB --samples-per-class 10
//	letters train-model
//	letters classify --letter A
package main

import (
	"os"
)

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
