// Package watch polls files for changes. The preview server uses it to
// reload data files while serving.
package watch
