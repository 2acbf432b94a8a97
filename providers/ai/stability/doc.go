// Package stability implements [ai.Provider] for the Stability AI REST API.
//
// Images come from the v1 text-to-image endpoint, which returns base64
// artifacts; a negative prompt is sent as a second text prompt with weight
// -1. Videos are produced from a source image by the v2beta stable-video
// endpoint, which answers with a job id rather than the video itself.
package stability
