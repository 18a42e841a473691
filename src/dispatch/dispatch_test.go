package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profile-clip/src/match"
)

type fakeSink struct {
	writes []string
	err    error
	events *[]string
}

func (s *fakeSink) Write(text string) error {
	if s.events != nil {
		*s.events = append(*s.events, "sink")
	}
	if s.err != nil {
		return s.err
	}
	s.writes = append(s.writes, text)
	return nil
}

type fakeNotifier struct {
	titles   []string
	messages []string
	events   *[]string
}

func (n *fakeNotifier) Notify(title, message string) {
	if n.events != nil {
		*n.events = append(*n.events, "notify")
	}
	n.titles = append(n.titles, title)
	n.messages = append(n.messages, message)
}

type fakeChooser struct {
	picked    match.Candidate
	dismissed bool
	err       error
	presented [][]match.Candidate
}

func (c *fakeChooser) Present(_ context.Context, candidates []match.Candidate) (match.Candidate, bool, error) {
	c.presented = append(c.presented, candidates)
	return c.picked, c.dismissed, c.err
}

func cand(label, value string, score float64) match.Candidate {
	return match.Candidate{Label: label, Value: value, Score: score}
}

func deps(c *fakeChooser, s *fakeSink, n *fakeNotifier) Deps {
	return Deps{Chooser: c, Sink: s, Notifier: n}
}

func TestResolveZeroCandidates(t *testing.T) {
	sink := &fakeSink{}
	notifier := &fakeNotifier{}
	chooser := &fakeChooser{}

	out := Resolve(context.Background(), "住址", nil, deps(chooser, sink, notifier))

	assert.Equal(t, NoMatch, out.Kind)
	assert.Empty(t, sink.writes, "nothing may reach the clipboard on no-match")
	assert.Empty(t, chooser.presented)
	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "住址")
}

func TestResolveSingleCandidate(t *testing.T) {
	sink := &fakeSink{}
	notifier := &fakeNotifier{}
	chooser := &fakeChooser{}

	out := Resolve(context.Background(), "姓名", []match.Candidate{cand("姓名", "张三", 1.0)}, deps(chooser, sink, notifier))

	assert.Equal(t, Resolved, out.Kind)
	assert.Equal(t, []string{"张三"}, sink.writes)
	assert.Empty(t, chooser.presented, "single match must not open the chooser")
	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "姓名")
	assert.Contains(t, notifier.messages[0], "张三")
}

func TestResolveCollapseLaw(t *testing.T) {
	sink := &fakeSink{}
	notifier := &fakeNotifier{}
	chooser := &fakeChooser{}

	// Two fields carrying the identical value collapse to one auto-resolved
	// write instead of a disambiguation prompt.
	candidates := []match.Candidate{
		cand("电话", "13800000000", 0.6),
		cand("手机", "13800000000", 0.6),
	}
	out := Resolve(context.Background(), "联系方式", candidates, deps(chooser, sink, notifier))

	assert.Equal(t, Resolved, out.Kind)
	assert.Equal(t, []string{"13800000000"}, sink.writes)
	assert.Empty(t, chooser.presented)
}

func TestResolveMultipleDistinctInvokesChooser(t *testing.T) {
	sink := &fakeSink{}
	notifier := &fakeNotifier{}
	chooser := &fakeChooser{picked: cand("手机", "13800000000", 0.6)}

	candidates := []match.Candidate{
		cand("电话", "010-12345678", 0.6),
		cand("手机", "13800000000", 0.6),
	}
	out := Resolve(context.Background(), "电话手机", candidates, deps(chooser, sink, notifier))

	assert.Equal(t, Resolved, out.Kind)
	assert.Equal(t, "手机", out.Label)
	assert.Equal(t, []string{"13800000000"}, sink.writes)
	require.Len(t, chooser.presented, 1)
	assert.Equal(t, candidates, chooser.presented[0])
}

func TestResolveChooserDismissed(t *testing.T) {
	sink := &fakeSink{}
	notifier := &fakeNotifier{}
	chooser := &fakeChooser{dismissed: true}

	candidates := []match.Candidate{
		cand("电话", "010-12345678", 0.6),
		cand("手机", "13800000000", 0.6),
	}
	out := Resolve(context.Background(), "x", candidates, deps(chooser, sink, notifier))

	assert.Equal(t, NoMatch, out.Kind)
	assert.Empty(t, sink.writes)
}

func TestResolveChooserErrorMapsToNoMatch(t *testing.T) {
	sink := &fakeSink{}
	notifier := &fakeNotifier{}
	chooser := &fakeChooser{err: errors.New("window system gone")}

	candidates := []match.Candidate{
		cand("电话", "a", 0.6),
		cand("手机", "b", 0.6),
	}
	out := Resolve(context.Background(), "x", candidates, deps(chooser, sink, notifier))

	assert.Equal(t, NoMatch, out.Kind)
	assert.Empty(t, sink.writes)
}

func TestResolveSinkErrorStillResolved(t *testing.T) {
	sink := &fakeSink{err: errors.New("clipboard denied")}
	notifier := &fakeNotifier{}
	chooser := &fakeChooser{}

	out := Resolve(context.Background(), "姓名", []match.Candidate{cand("姓名", "张三", 1.0)}, deps(chooser, sink, notifier))

	assert.Equal(t, Resolved, out.Kind)
	require.Error(t, out.SinkErr)
	require.Len(t, notifier.titles, 1)
	assert.Equal(t, "Copy failed", notifier.titles[0])
}

func TestResolveSinkWriteHappensBeforeNotify(t *testing.T) {
	var events []string
	sink := &fakeSink{events: &events}
	notifier := &fakeNotifier{events: &events}
	chooser := &fakeChooser{}

	Resolve(context.Background(), "姓名", []match.Candidate{cand("姓名", "张三", 1.0)}, deps(chooser, sink, notifier))

	assert.Equal(t, []string{"sink", "notify"}, events)
}

func TestResolveOutcomeCompleteness(t *testing.T) {
	sink := &fakeSink{}
	notifier := &fakeNotifier{}
	chooser := &fakeChooser{dismissed: true}

	inputs := [][]match.Candidate{
		nil,
		{cand("a", "1", 1.0)},
		{cand("a", "1", 0.6), cand("b", "2", 0.6)},
	}
	for _, in := range inputs {
		out := Resolve(context.Background(), "t", in, deps(chooser, sink, notifier))
		assert.Contains(t, []OutcomeKind{Resolved, NoMatch}, out.Kind)
	}
}
