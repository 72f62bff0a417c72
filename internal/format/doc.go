// Package format renders timed transcript segments into the supported
// output encodings: plain text, SRT, WebVTT, and JSON.
package format
