// Package sources registers the available roster document formats with the
// core registry. Import it for its side effects.
package sources

// Each source file uses init() to register its format.
