// Package utils holds the low-level helpers shared by the provider adapters:
// JSON, raw and multipart HTTP round-trips ([DoPostSync], [DoPostRaw],
// [DoPostMultipart], [DoGetSync]), a wall-clock [Timer], [Ptr] and string
// truncation for log previews.
package utils
