// Package dispatch turns ranked match candidates into a clipboard write and
// a user-visible outcome.
package dispatch

import (
	"context"
	"fmt"
	"log"

	"profile-clip/src/logutil"
	"profile-clip/src/match"
)

// previewLen bounds the value preview embedded in notifications.
const previewLen = 40

type OutcomeKind int

const (
	Resolved OutcomeKind = iota
	NoMatch
)

func (k OutcomeKind) String() string {
	if k == Resolved {
		return "Resolved"
	}
	return "NoMatch"
}

// Outcome is the terminal result of resolving one candidate list. SinkErr is
// set when the clipboard write failed; the outcome is still Resolved for
// state-machine purposes, only the user-visible message changes.
type Outcome struct {
	Kind    OutcomeKind
	Label   string
	Value   string
	SinkErr error
	Message string
}

// Chooser presents a ranked candidate list and returns the user's pick.
// dismissed is true when the user closed the chooser without selecting.
type Chooser interface {
	Present(ctx context.Context, candidates []match.Candidate) (picked match.Candidate, dismissed bool, err error)
}

// Sink writes the final value where a later paste can reach it.
type Sink interface {
	Write(text string) error
}

// Notifier reports the outcome to the user. Implementations must not block;
// the pipeline calls Notify inline.
type Notifier interface {
	Notify(title, message string)
}

type Deps struct {
	Chooser  Chooser
	Sink     Sink
	Notifier Notifier
}

// Resolve maps a candidate list to exactly one of {Resolved, NoMatch}.
// Zero candidates report no-match; one distinct value (even when several
// fields carry it) is written directly; several distinct values go through
// the chooser. The sink write always happens before the notifier call for
// the same outcome.
func Resolve(ctx context.Context, recognized string, candidates []match.Candidate, deps Deps) Outcome {
	if len(candidates) == 0 {
		msg := fmt.Sprintf("No match found for %q", logutil.Truncate(recognized, previewLen))
		notify(deps, "No match", msg)
		return Outcome{Kind: NoMatch, Message: msg}
	}

	if distinctValueCount(candidates) == 1 {
		return deliver(deps, candidates[0])
	}

	picked, dismissed, err := deps.Chooser.Present(ctx, candidates)
	if err != nil {
		log.Printf("Dispatch: chooser failed: %v", err)
		dismissed = true
	}
	if dismissed {
		msg := "Selection dismissed, nothing copied"
		notify(deps, "No match", msg)
		return Outcome{Kind: NoMatch, Message: msg}
	}
	return deliver(deps, picked)
}

func deliver(deps Deps, c match.Candidate) Outcome {
	out := Outcome{Kind: Resolved, Label: c.Label, Value: c.Value}
	if err := deps.Sink.Write(c.Value); err != nil {
		log.Printf("Dispatch: clipboard write failed: %v", err)
		out.SinkErr = err
		out.Message = fmt.Sprintf("Copy of %s failed: %v", c.Label, err)
		notify(deps, "Copy failed", out.Message)
		return out
	}
	out.Message = fmt.Sprintf("Copied %s: %s", c.Label, logutil.Truncate(c.Value, previewLen))
	notify(deps, "Copied", out.Message)
	return out
}

func notify(deps Deps, title, message string) {
	if deps.Notifier != nil {
		deps.Notifier.Notify(title, message)
	}
}

// distinctValueCount counts textually distinct candidate values. Candidates
// from different fields that store the identical value collapse together so
// the user is not asked to disambiguate between equal strings.
func distinctValueCount(candidates []match.Candidate) int {
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		seen[c.Value] = struct{}{}
	}
	return len(seen)
}
