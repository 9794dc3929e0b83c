package handlers

import (
	"net/http"
	"net/url"
	"strconv"
)

// redirectError carries arbitrary (including raw database) error text back
// to the originating form as a flash query parameter.
func redirectError(w http.ResponseWriter, r *http.Request, path, msg string) {
	http.Redirect(w, r, path+"?error="+url.QueryEscape(msg), http.StatusSeeOther)
}

func redirectSuccess(w http.ResponseWriter, r *http.Request, path, msg string) {
	http.Redirect(w, r, path+"?success="+url.QueryEscape(msg), http.StatusSeeOther)
}

func parseID(s string) (uint, bool) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// parseOptionalID treats an empty or zero form value as "no reference".
func parseOptionalID(s string) *uint {
	if id, ok := parseID(s); ok {
		return &id
	}
	return nil
}
