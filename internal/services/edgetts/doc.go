// Package edgetts implements the speech-synthesis collaborator on top of the
// edge-tts command line. The service throttles aggressively, so failures are
// reported as transient and rate-limit responses are distinguishable for the
// caller's backoff policy.
package edgetts
