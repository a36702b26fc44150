// Package gtranslate implements the machine-translation collaborator against
// the public Google Translate web endpoint. Failures are transient and safe
// to retry; the per-segment retry policy lives with the translate stage.
package gtranslate
