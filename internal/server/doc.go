// Package server exposes rendered artifacts over HTTP so the remote
// publishing API can fetch them by URL. It serves a single directory
// read-only under /downloads/ and answers /healthz; nothing else.
package server
