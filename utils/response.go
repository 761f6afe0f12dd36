package utils

import (
	"encoding/json"
	"net/http"
)

func RespondWithError(w http.ResponseWriter, code int, msg string) {
	RespondWithJSON(w, code, map[string]string{"error": msg})
}

// Sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// RespondWithErr maps err to its HTTP status. Unclassified errors become a bare 500 so
// driver messages never reach clients.
func RespondWithErr(w http.ResponseWriter, err error) {
	code := Status(err)
	if code == http.StatusInternalServerError {
		RespondWithError(w, code, "Internal Server Error")
		return
	}
	if ie := AsInputError(err); ie != nil {
		RespondWithJSON(w, code, M{"error": ie.Error(), "errors": ie.Fields()})
		return
	}
	RespondWithError(w, code, err.Error())
}

type M map[string]interface{}
