// Package server exposes the application over HTTP: the OAuth callback
// endpoint with its HTML landing pages, a JSON API for authorization,
// browsing and pipeline runs, health probes and a dedicated metrics server.
package server
