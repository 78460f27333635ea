package constant

const (
	TurnRoleUser  = "user"
	TurnRoleModel = "model"

	DefaultSessionTitle = "Unnamed session"

	// MaxQueryLength bounds the accepted question size in characters.
	MaxQueryLength = 4000

	// HistoryWindow is how many recent turns feed the generation prompt.
	HistoryWindow = 10

	// TurnCompletedTopic is the in-process event topic fired after every
	// answered turn.
	TurnCompletedTopic = "TURN_COMPLETED"
)
