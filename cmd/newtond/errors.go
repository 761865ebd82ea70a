package main

import "errors"

var errInvalidBufferSize = errors.New("buffer-size must be at least 1")
