package handlers

import (
	"encoding/json"
	"mime"
	"net/http"
	"net/url"
)

const maxBodyBytes = 1 << 20

// decodeBody fills dst from a JSON body, or calls fromForm for urlencoded form posts.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any, fromForm func(url.Values)) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			return err
		}
		fromForm(r.PostForm)
		return nil
	}
	return json.NewDecoder(r.Body).Decode(dst)
}
