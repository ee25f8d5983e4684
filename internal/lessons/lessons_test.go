package lessons

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statbook/internal/errors"
)

func TestCatalog_AllLessonsRender(t *testing.T) {
	all := All()
	require.NotEmpty(t, all)

	seen := map[string]bool{}
	for _, l := range all {
		assert.False(t, seen[l.Slug], "duplicate slug %s", l.Slug)
		seen[l.Slug] = true

		body, err := l.HTML()
		require.NoError(t, err, l.Slug)
		assert.True(t, strings.Contains(string(body), "<h1"), "lesson %s should render a heading", l.Slug)
	}
}

func TestFind(t *testing.T) {
	l, err := Find("regression")
	require.NoError(t, err)
	assert.Equal(t, "regression", l.Chart)

	_, err = Find("calculus")
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))
}

func TestProgress_ForwardRequiresCompletion(t *testing.T) {
	p := NewProgress()

	p, err := p.Apply(ActionNext)
	require.NoError(t, err)
	assert.Equal(t, StageExplore, p.Current)

	_, err = p.Apply(ActionNext)
	assert.True(t, errors.IsInvalidInput(err))

	p, err = p.Apply(ActionComplete)
	require.NoError(t, err)
	p, err = p.Apply(ActionNext)
	require.NoError(t, err)
	assert.Equal(t, StagePractice, p.Current)
	assert.Equal(t, []Stage{StageExplore}, p.Completed())
}

func TestProgress_ImmutableSnapshots(t *testing.T) {
	start := NewProgress()
	done, err := start.Apply(ActionComplete)
	require.NoError(t, err)

	assert.False(t, start.IsCompleted(StageIntro))
	assert.True(t, done.IsCompleted(StageIntro))
}

func TestProgress_WalkToSummary(t *testing.T) {
	p := NewProgress()
	var err error
	for p.Current != StageSummary {
		p, err = p.Apply(ActionComplete)
		require.NoError(t, err)
		p, err = p.Apply(ActionNext)
		require.NoError(t, err)
	}
	assert.False(t, p.Finished())

	p, err = p.Apply(ActionComplete)
	require.NoError(t, err)
	assert.True(t, p.Finished())

	_, err = p.Apply(ActionNext)
	assert.True(t, errors.IsInvalidInput(err))

	back, err := p.Apply(ActionBack)
	require.NoError(t, err)
	assert.Equal(t, StageQuiz, back.Current)

	reset, err := p.Apply(ActionReset)
	require.NoError(t, err)
	assert.Equal(t, StageIntro, reset.Current)
	assert.Empty(t, reset.Completed())
}

func TestProgress_BackFromIntroRejected(t *testing.T) {
	_, err := NewProgress().Apply(ActionBack)
	assert.True(t, errors.IsInvalidInput(err))
}

func TestLessonJSONUsesStageNames(t *testing.T) {
	l, err := Find("t-tests")
	require.NoError(t, err)

	raw, err := json.Marshal(l)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"stages":["intro","explore","practice","quiz","summary"]`)

	var back struct {
		Stages []Stage `json:"stages"`
	}
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, Stages(), back.Stages)
}

func TestStageNames(t *testing.T) {
	for _, s := range Stages() {
		parsed, err := ParseStage(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}
	_, err := ParseStage("epilogue")
	assert.True(t, errors.IsInvalidInput(err))

	_, err = RestoreProgress(Stage(42), nil)
	assert.True(t, errors.IsInvalidInput(err))
}
