// Package textutil provides the text rules used to turn APOD captions into
// stable cache file names.
package textutil
