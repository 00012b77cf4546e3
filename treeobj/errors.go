package treeobj

import "errors"

// ErrInvalidObject is returned when raw tree or metadata-stream bytes fail
// to decode: truncated tree bytes, an unknown kind tag, or a metadata
// record that cannot be parsed.
var ErrInvalidObject = errors.New("treeobj: invalid object")
