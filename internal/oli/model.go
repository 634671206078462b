// Package oli is the HTTP client for an OLI-Cloud-style chemistry service:
// password-grant authentication, chemistry definition upload, and flash
// calculation calls with asynchronous result polling.
package oli

import "encoding/json"

// Flash methods accepted by the calculation endpoint.
const (
	MethodWaterAnalysis = "wateranalysis"
	MethodIsothermal    = "isothermal"
)

// tokenResponse is the auth endpoint's reply to a password or refresh grant.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// uploadResponse is the chemistry-file upload reply.
type uploadResponse struct {
	File []struct {
		ID string `json:"id"`
	} `json:"file"`
}

// callEnvelope wraps every calculation reply. A finished call carries the
// result document in Data; an accepted-but-running call carries a results
// link to poll instead.
type callEnvelope struct {
	Status      string          `json:"status"`
	Message     string          `json:"message,omitempty"`
	ResultsLink string          `json:"resultsLink,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
}

// Envelope statuses used by the service.
const (
	statusSucceeded  = "SUCCESS"
	statusProcessed  = "PROCESSED"
	statusInProgress = "IN PROGRESS"
	statusFailed     = "FAILED"
	statusError      = "ERROR"
)
