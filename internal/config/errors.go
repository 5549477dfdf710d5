package config

import "errors"

var (
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrCyclicDependency = errors.New("invalid configuration: dependency cycle")
)
