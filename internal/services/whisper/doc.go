// Package whisper runs speech-to-text transcription through an external
// whisper-ctranslate2 process and exposes the decoded segments as a lazy
// sequence. The engine is constructed once per process via Provider so model
// parameters stay fixed for the daemon's lifetime.
package whisper
