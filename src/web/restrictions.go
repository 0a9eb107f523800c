// This file is part of godchecker.

// godchecker is free software released under the MIT License.
// See LICENSE.md file for details.

package web

import (
	"net/http"

	"github.com/godchecker/godchecker/src/feed"
)

// Pattern: /restrictions.json
//
// The data resource. The shell cache never stores this path; every load
// reaches this handler and reads the current feed from the store.
func (data *Data) handleRestrictions(rw http.ResponseWriter, req *http.Request) error {
	items, err := data.DB.LoadItems(req.Context())
	if err != nil {
		return err
	}

	doc, err := feed.Encode(items)
	if err != nil {
		return err
	}

	rw.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.Header().Set("Cache-Control", "no-cache")
	rw.Write(doc)
	rw.Write([]byte("\n"))
	return nil
}
