package handlers

import "net/http"

// HealthCheck reports liveness for load balancers and uptime probes.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "rentledger-api",
	})
}
