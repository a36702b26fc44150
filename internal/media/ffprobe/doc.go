// Package ffprobe inspects media containers via the ffprobe command line.
package ffprobe
