package ports

// Emote is one custom-emote entry of the user's catalog. Code is either a
// literal token or a pattern matched against outgoing message text.
type Emote struct {
	ID   string `json:"id"`
	Code string `json:"code"`
}

// EmotesPort is the external collaborator refreshing the user's available
// emote catalog from the platform REST API.
type EmotesPort interface {
	// Refresh asynchronously fetches the catalog for a comma-joined list
	// of emote-set ids, retrying until it succeeds or Stop is called.
	Refresh(sets string)
	// Snapshot returns the current catalog keyed by emote-set id.
	Snapshot() map[string][]Emote
	// SetOnUpdate installs the callback invoked after every successful
	// refresh.
	SetOnUpdate(fn func(sets string, catalog map[string][]Emote))
	Stop()
}
