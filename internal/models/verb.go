package models

// Verb is an xAPI verb configuration entry. Verbs tell the backend which
// statement types count toward progress tracking.
type Verb struct {
	ID      string `json:"id"`
	IRI     string `json:"iri"`
	Display string `json:"display"`
	Enabled bool   `json:"enabled"`
}
