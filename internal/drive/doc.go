// Package drive wraps the Google Drive v3 API for the two operations the
// pipeline needs: finding candidate audio recordings and downloading a
// selected file to a local temporary artifact.
package drive
