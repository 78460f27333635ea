package assistant

// Fixed response texts used when generation cannot proceed normally.
const (
	// NotGroundedNotice prefixes answers produced without any matching
	// study material, so the user knows the answer is not sourced.
	NotGroundedNotice = "I couldn't find anything in your study material about this, so the following is general knowledge rather than a grounded answer.\n\n"

	// StaleFallbackNotice prefixes an older cached answer served while
	// generation is unavailable.
	StaleFallbackNotice = "The assistant is temporarily unavailable, so here is a previous answer to a similar question:\n\n"

	// ApologyMessage is returned when generation fails and no cached
	// fallback exists. The request can be retried.
	ApologyMessage = "Sorry, I couldn't generate an answer right now. Please try again in a moment."
)
