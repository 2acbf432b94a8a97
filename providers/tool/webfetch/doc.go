// Package webfetch provides the "web_fetch" tool, which downloads a web page
// and hands its content back to the model as Markdown (via html-to-markdown).
package webfetch
