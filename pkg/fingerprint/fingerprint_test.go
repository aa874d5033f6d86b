package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func base() Input {
	return Input{
		SourceContent: "how we grew a channel to 100k subscribers",
		ToolName:      "youtube",
		Tone:          "casual",
		Emotion:       "inspirational",
		Language:      "english",
		TargetRegion:  "US",
		CreatorNotes:  "mention the newsletter",
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	a := Compute(base())
	b := Compute(base())
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestEveryFieldChangesFingerprint(t *testing.T) {
	ref := Compute(base())
	mutations := map[string]func(*Input){
		"source":  func(in *Input) { in.SourceContent += "!" },
		"tool":    func(in *Input) { in.ToolName = "blog" },
		"tone":    func(in *Input) { in.Tone = "professional" },
		"emotion": func(in *Input) { in.Emotion = "logical" },
		"lang":    func(in *Input) { in.Language = "bangla" },
		"region":  func(in *Input) { in.TargetRegion = "BD" },
		"notes":   func(in *Input) { in.CreatorNotes = "" },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			in := base()
			mutate(&in)
			assert.NotEqual(t, ref, Compute(in))
		})
	}
}

func TestFieldBoundariesAreUnambiguous(t *testing.T) {
	a := Input{Tone: "ab", Emotion: "c"}
	b := Input{Tone: "a", Emotion: "bc"}
	assert.NotEqual(t, Compute(a), Compute(b))
}

func TestInvalidUTF8IsNotFolded(t *testing.T) {
	a := Input{SourceContent: "a\xff", ToolName: "t"}
	b := Input{SourceContent: "a\xfe", ToolName: "t"}
	c := Input{SourceContent: "a�", ToolName: "t"}

	assert.NotEqual(t, Compute(a), Compute(b))
	assert.NotEqual(t, Compute(a), Compute(c))
}

func TestEmptyFieldsAreDistinguished(t *testing.T) {
	a := Input{SourceContent: "x"}
	b := Input{ToolName: "x"}
	assert.NotEqual(t, Compute(a), Compute(b))
}
