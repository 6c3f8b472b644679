package constants

// Client used when a request does not carry one.
const DefaultClientID = "default"

// Classifier terminal reasoning messages. These are part of the response
// contract; downstream consumers match on them.
const (
	ReasonNoCodes          = "No codes provided for classification"
	ReasonNoMatches        = "No matching episodes found for provided codes"
	ReasonNoConfidentMatch = "No confident episode match found"
)

// This is set during compilation via -ldflags.
var Version = "latest"
