// This file is part of godchecker.

// godchecker is free software released under the MIT License.
// See LICENSE.md file for details.

package web

import (
	"net/http"
	"path"
	"strings"
)

// Pattern: / and /index.html
func (data *Data) handleIndex(rw http.ResponseWriter, req *http.Request) error {
	page, err := embFS.ReadFile("data/index.html")
	if err != nil {
		return err
	}

	rw.Header().Set("Content-Type", "text/html; charset=utf-8")
	rw.Header().Set("Cache-Control", "public, max-age=3600")
	rw.Write(page)
	return nil
}

// Pattern: /manifest.webmanifest
func (data *Data) handleManifest(rw http.ResponseWriter, req *http.Request) error {
	manifest, err := embFS.ReadFile("data/manifest.webmanifest")
	if err != nil {
		return err
	}

	rw.Header().Set("Content-Type", "application/manifest+json")
	rw.Header().Set("Cache-Control", "public, max-age=3600")
	rw.Write(manifest)
	return nil
}

// Pattern: /icons/
func (data *Data) handleIcon(rw http.ResponseWriter, req *http.Request) error {
	name := path.Base(req.URL.Path)
	if !strings.HasSuffix(name, ".png") {
		http.NotFound(rw, req)
		return nil
	}

	icon, err := embFS.ReadFile("data/icons/" + name)
	if err != nil {
		http.NotFound(rw, req)
		return nil
	}

	rw.Header().Set("Content-Type", "image/png")
	rw.Header().Set("Cache-Control", "public, max-age=86400")
	rw.Write(icon)
	return nil
}
