// Command aimux smoke-tests the generative AI providers against their live
// APIs and writes what each model produces under an output directory.
//
//	aimux                      # every feature of every provider
//	aimux gemini               # every feature of one provider
//	aimux tts elevenlabs       # one feature of one provider
//	aimux keys                 # which API keys are configured
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
