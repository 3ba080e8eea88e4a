package backend

import "math/rand/v2"

// Uniform draws from [0, 1).
func Uniform() float64 { return rand.Float64() }

// Normal draws from the standard normal distribution.
func Normal() float64 { return rand.NormFloat64() }
