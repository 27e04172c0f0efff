package mockapi

import (
	"encoding/json"
	"net/http"

	"github.com/me/uniportal/pkg/model"
)

// envelope mirrors model.Response with a typed payload for encoding.
type envelope struct {
	Success bool            `json:"success"`
	Data    any             `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Code    model.ErrorCode `json:"code,omitempty"`
}

// respondOK writes a success envelope.
func respondOK(w http.ResponseWriter, data any) {
	respondJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

// respondMessage writes a success envelope carrying only a message.
func respondMessage(w http.ResponseWriter, msg string) {
	respondJSON(w, http.StatusOK, envelope{Success: true, Message: msg})
}

// respondCreated writes a 201 envelope with the new record's id.
func respondCreated(w http.ResponseWriter, id string) {
	respondJSON(w, http.StatusCreated, envelope{Success: true, Data: map[string]string{"id": id}, Message: "created"})
}

// respondError writes a failure envelope.
func respondError(w http.ResponseWriter, status int, code model.ErrorCode, msg string) {
	respondJSON(w, status, envelope{Success: false, Message: msg, Code: code})
}

func respondJSON(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(env)
}

// respondPDF writes a PDF document as an attachment.
func respondPDF(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// decodeBody decodes a JSON request body into v, answering 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, model.ErrValidation, "Validation failed: invalid JSON: "+err.Error())
		return false
	}
	return true
}
