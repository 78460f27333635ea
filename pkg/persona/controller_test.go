package persona

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve_EmptyRequestKeepsCurrentMode(t *testing.T) {
	c := NewController()

	res := c.Resolve(ModeMentor, "")

	assert.True(t, res.Accepted)
	assert.Equal(t, ModeMentor, res.Mode)
	assert.Empty(t, res.Message)
}

func TestResolve_SameModeIsIdempotent(t *testing.T) {
	c := NewController()

	res := c.Resolve(ModeTutor, "tutor")

	assert.True(t, res.Accepted)
	assert.Equal(t, ModeTutor, res.Mode)
	assert.Contains(t, res.Message, "Already in tutor mode")
}

func TestResolve_AcceptedTransitionConfirms(t *testing.T) {
	c := NewController()

	res := c.Resolve(ModeTutor, "interviewer")

	assert.True(t, res.Accepted)
	assert.Equal(t, ModeInterviewer, res.Mode)
	assert.Contains(t, res.Message, "Switched to interviewer mode")
}

func TestResolve_UnknownModeAsksForClarification(t *testing.T) {
	c := NewController()

	res := c.Resolve(ModeTutor, "drill sergeant")

	assert.False(t, res.Accepted)
	assert.True(t, res.Clarification)
	assert.Equal(t, ModeTutor, res.Mode)
	assert.Contains(t, res.Message, "tutor, interviewer, mentor")
}

func TestResolve_RequestIsNormalized(t *testing.T) {
	c := NewController()

	res := c.Resolve(ModeTutor, "  Mentor ")

	assert.True(t, res.Accepted)
	assert.Equal(t, ModeMentor, res.Mode)
}

func TestResolve_AllModesReachEachOther(t *testing.T) {
	c := NewController()
	modes := []Mode{ModeTutor, ModeInterviewer, ModeMentor}

	for _, from := range modes {
		for _, to := range modes {
			if from == to {
				continue
			}
			res := c.Resolve(from, string(to))
			assert.True(t, res.Accepted, "expected %s -> %s to be allowed", from, to)
			assert.Equal(t, to, res.Mode)
		}
	}
}

func TestProfiles_ToneValuesAreBounded(t *testing.T) {
	for _, p := range Profiles() {
		assert.GreaterOrEqual(t, p.Tone.Formality, 0.0)
		assert.LessOrEqual(t, p.Tone.Formality, 1.0)
		assert.GreaterOrEqual(t, p.Tone.Directiveness, 0.0)
		assert.LessOrEqual(t, p.Tone.Directiveness, 1.0)
		assert.GreaterOrEqual(t, p.Tone.Encouragement, 0.0)
		assert.LessOrEqual(t, p.Tone.Encouragement, 1.0)
	}
}
