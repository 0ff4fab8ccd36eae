package handlers

import (
	"encoding/json"
	"log"
	"net/http"
)

// envelope is the uniform response shape; HTTP status mirrors OK.
type envelope struct {
	OK   bool   `json:"ok"`
	Data any    `json:"data,omitempty"`
	Msg  string `json:"msg,omitempty"`
	Meta any    `json:"meta,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func respondOK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{OK: true, Data: data})
}

func respondOKMeta(w http.ResponseWriter, data, meta any) {
	writeJSON(w, http.StatusOK, envelope{OK: true, Data: data, Meta: meta})
}

func respondErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{OK: false, Msg: msg})
}

// respondServerErr logs the detail and returns a generic message only.
func respondServerErr(w http.ResponseWriter, where string, err error) {
	log.Printf("%s: %v", where, err)
	respondErr(w, http.StatusInternalServerError, "Server error")
}
