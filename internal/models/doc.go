// Package models manages the local catalog of ggml speech models: the
// builtin list of known models, discovery of already-downloaded files, and
// downloading missing ones from the upstream model repository.
package models
