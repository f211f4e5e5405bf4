package nn

import "errors"

var (
	// ErrConfiguration reports an invalid topology or invalid evolution rates.
	ErrConfiguration = errors.New("configuration error")
	// ErrValidation reports a genome or input vector of the wrong length.
	ErrValidation = errors.New("validation error")
	// ErrIncompatibleGenome reports crossover between different topologies.
	ErrIncompatibleGenome = errors.New("incompatible genome")
)
