// Command dubforge drives the dubbing pipeline: transcribe a source video,
// translate the captions, synthesize speech clips, and export a dubbed MP4
// with a subtitle sidecar. Stages can be run individually or chained with
// `dubforge dub`.
package main
