// Package elevenlabs implements [ai.Provider] for ElevenLabs text-to-speech.
//
// Voices are addressed by name through a small built-in catalogue; any other
// value is sent as a raw voice id, so ids returned by
// [ElevenLabsProvider.Voices] can be used directly. ElevenLabs bills by
// character rather than by token, so usage is always zero.
package elevenlabs
