package persona

// Mode is the active interaction persona governing tone.
type Mode string

const (
	ModeTutor       Mode = "tutor"
	ModeInterviewer Mode = "interviewer"
	ModeMentor      Mode = "mentor"
)

// DefaultMode is the initial persona for a new session.
const DefaultMode = ModeTutor

// ToneParams shape the generation prompt for a mode.
type ToneParams struct {
	Formality     float64 `json:"formality"`
	Directiveness float64 `json:"directiveness"`
	Encouragement float64 `json:"encouragement"`
}

// Profile is the static configuration of one mode, loaded once at start.
type Profile struct {
	Mode               Mode       `json:"mode"`
	Tone               ToneParams `json:"tone"`
	Framing            string     `json:"framing"`
	AllowedTransitions []Mode     `json:"allowed_transitions"`
}

func (p Profile) allows(target Mode) bool {
	for _, m := range p.AllowedTransitions {
		if m == target {
			return true
		}
	}
	return false
}

// profiles is the static mode registry.
var profiles = map[Mode]Profile{
	ModeTutor: {
		Mode: ModeTutor,
		Tone: ToneParams{Formality: 0.4, Directiveness: 0.3, Encouragement: 0.9},
		Framing: "Walk through the material step by step, celebrate progress, " +
			"and check understanding before moving on.",
		AllowedTransitions: []Mode{ModeInterviewer, ModeMentor},
	},
	ModeInterviewer: {
		Mode: ModeInterviewer,
		Tone: ToneParams{Formality: 0.8, Directiveness: 0.9, Encouragement: 0.2},
		Framing: "Probe the user's understanding with pointed questions and " +
			"evaluate answers candidly, as in a real interview.",
		AllowedTransitions: []Mode{ModeTutor, ModeMentor},
	},
	ModeMentor: {
		Mode: ModeMentor,
		Tone: ToneParams{Formality: 0.5, Directiveness: 0.5, Encouragement: 0.6},
		Framing: "Relate the material to goals and practice, offering " +
			"perspective and motivation alongside the answer.",
		AllowedTransitions: []Mode{ModeTutor, ModeInterviewer},
	},
}

// Profiles returns all mode profiles.
func Profiles() []Profile {
	return []Profile{profiles[ModeTutor], profiles[ModeInterviewer], profiles[ModeMentor]}
}

// Lookup returns the profile for a mode.
func Lookup(mode Mode) (Profile, bool) {
	p, ok := profiles[mode]
	return p, ok
}
