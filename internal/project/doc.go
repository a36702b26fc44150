// Package project persists dubbing projects in SQLite so a pipeline can be
// resumed across CLI invocations: the source video, language settings, the
// caption timeline as it moves through the stages, and a history of terminal
// job outcomes. Live progress is deliberately not persisted.
package project
