// Package watch feeds the job manager from a monitored directory. New
// media files dropped into the directory are passed through the media gate
// and handed to a submit callback once they settle on disk.
package watch
