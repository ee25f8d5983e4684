package lessons

import (
	"fmt"
	"sort"

	"statbook/internal/errors"
)

// Stage is one step of a lesson walk-through
type Stage int

const (
	StageIntro Stage = iota
	StageExplore
	StagePractice
	StageQuiz
	StageSummary
)

var stageNames = map[Stage]string{
	StageIntro:    "intro",
	StageExplore:  "explore",
	StagePractice: "practice",
	StageQuiz:     "quiz",
	StageSummary:  "summary",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// Stages lists every stage in lesson order
func Stages() []Stage {
	return []Stage{StageIntro, StageExplore, StagePractice, StageQuiz, StageSummary}
}

func (s Stage) MarshalText() ([]byte, error) {
	if _, ok := stageNames[s]; !ok {
		return nil, errors.InvalidInput("unknown stage %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Stage) UnmarshalText(text []byte) error {
	parsed, err := ParseStage(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseStage maps a stage name back to its enum value
func ParseStage(name string) (Stage, error) {
	for s, n := range stageNames {
		if n == name {
			return s, nil
		}
	}
	return 0, errors.InvalidInput("unknown stage %q", name)
}

// Action is a user event that moves a lesson between stages
type Action string

const (
	ActionNext     Action = "next"
	ActionBack     Action = "back"
	ActionComplete Action = "complete"
	ActionReset    Action = "reset"
)

// transitions is the full stage machine. Complete marks the current stage done
// without moving; Reset is handled separately because it clears completion.
var transitions = map[Stage]map[Action]Stage{
	StageIntro:    {ActionNext: StageExplore},
	StageExplore:  {ActionNext: StagePractice, ActionBack: StageIntro},
	StagePractice: {ActionNext: StageQuiz, ActionBack: StageExplore},
	StageQuiz:     {ActionNext: StageSummary, ActionBack: StagePractice},
	StageSummary:  {ActionBack: StageQuiz},
}

// Progress is an immutable snapshot of where a reader is in a lesson
type Progress struct {
	Current   Stage
	completed map[Stage]bool
}

// NewProgress starts at the intro with nothing completed
func NewProgress() Progress {
	return Progress{Current: StageIntro, completed: map[Stage]bool{}}
}

// Apply returns the progress after action, leaving p unchanged.
// Moving forward requires the current stage to be completed first, except
// from the intro which has nothing to complete.
func (p Progress) Apply(action Action) (Progress, error) {
	switch action {
	case ActionReset:
		return NewProgress(), nil
	case ActionComplete:
		next := p.clone()
		next.completed[p.Current] = true
		return next, nil
	}

	target, ok := transitions[p.Current][action]
	if !ok {
		return p, errors.InvalidInput("cannot %s from stage %s", action, p.Current)
	}
	if action == ActionNext && p.Current != StageIntro && !p.completed[p.Current] {
		return p, errors.InvalidInput("stage %s must be completed before moving on", p.Current)
	}
	next := p.clone()
	next.Current = target
	return next, nil
}

// IsCompleted reports whether s has been marked complete
func (p Progress) IsCompleted(s Stage) bool {
	return p.completed[s]
}

// Completed lists completed stages in lesson order
func (p Progress) Completed() []Stage {
	out := make([]Stage, 0, len(p.completed))
	for s, done := range p.completed {
		if done {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Finished reports whether the reader reached and completed the summary
func (p Progress) Finished() bool {
	return p.Current == StageSummary && p.completed[StageSummary]
}

func (p Progress) clone() Progress {
	completed := make(map[Stage]bool, len(p.completed))
	for s, done := range p.completed {
		completed[s] = done
	}
	return Progress{Current: p.Current, completed: completed}
}

// RestoreProgress rebuilds a snapshot sent back by a client
func RestoreProgress(current Stage, completed []Stage) (Progress, error) {
	if _, ok := transitions[current]; !ok {
		return Progress{}, errors.InvalidInput("unknown stage %d", int(current))
	}
	p := NewProgress()
	p.Current = current
	for _, s := range completed {
		if _, ok := transitions[s]; !ok {
			return Progress{}, errors.InvalidInput("unknown stage %d", int(s))
		}
		p.completed[s] = true
	}
	return p, nil
}
