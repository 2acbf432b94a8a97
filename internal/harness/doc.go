// Package harness exercises every model of the registered providers one
// feature at a time and writes what they produce to disk, one file per
// model: {out}/{provider}/{model_id}.{txt|jpg|mp3|mp4}.
//
// It is the engine behind the aimux command line and is meant for manual
// smoke testing against the live vendor APIs.
package harness
