// Package runway implements [ai.Provider] for Runway video generation.
//
// Videos are produced asynchronously: GenerateVideo returns a reference
// holding the generation id, and [RunwayProvider.CheckVideoStatus] polls it
// until the output URL is available. The generation mode is text, image or
// video to video; when the request leaves it unset it is inferred from the
// source URLs.
package runway
