package health

import (
	"encoding/json"
	"net/http"
)

// Response is the payload for the health endpoint.
type Response struct {
	Status       string `json:"status"`
	Version      string `json:"version"`
	ActiveDrafts int    `json:"activeDrafts"`
}

// Handler returns a plain HTTP handler for the health check endpoint.
// activeDrafts may be nil.
func Handler(version string, activeDrafts func() int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := Response{Status: "healthy", Version: version}
		if activeDrafts != nil {
			resp.ActiveDrafts = activeDrafts()
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
