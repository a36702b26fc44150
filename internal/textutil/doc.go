// Package textutil provides filename sanitization helpers for paths derived
// from user-supplied project and video names.
package textutil
