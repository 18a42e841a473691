package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profile-clip/src/profile"
)

func field(label string, values ...string) profile.Field {
	return profile.Field{Label: label, Values: values}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		out  string
	}{
		{name: "Trims and removes internal whitespace", in: "  手 机  ", out: "手机"},
		{name: "Strips trailing colon", in: "电话：", out: "电话"},
		{name: "Strips full-width punctuation", in: "（姓名）", out: "姓名"},
		{name: "Lower-cases latin", in: "E-Mail", out: "email"},
		{name: "Folds full-width latin", in: "ＡＢＣ", out: "abc"},
		{name: "Newlines and tabs removed", in: "工作\n经历\t", out: "工作经历"},
		{name: "Empty", in: "", out: ""},
		{name: "Only punctuation", in: "：！？", out: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.out, Normalize(tt.in))
		})
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("手机", "手机"))
	assert.Equal(t, 0.5, Similarity("ab", "ax"))
	assert.Equal(t, 0.0, Similarity("", ""))
	assert.Equal(t, 0.0, Similarity("手机", ""))
	assert.Equal(t, 0.0, Similarity("", "手机"))
	// Rune-based, not byte-based: one of two CJK chars differs.
	assert.Equal(t, 0.5, Similarity("电话", "电池"))
}

func TestMatchExactLabel(t *testing.T) {
	fields := []profile.Field{field("姓名", "张三"), field("电话", "010-12345678")}

	got := Match("姓名", fields, DefaultThreshold)
	require.Len(t, got, 1)
	assert.Equal(t, "姓名", got[0].Label)
	assert.Equal(t, "张三", got[0].Value)
	assert.Equal(t, 1.0, got[0].Score)
}

func TestMatchOCRNoiseWhitespace(t *testing.T) {
	fields := []profile.Field{field("电话", "010-12345678"), field("手机", "13800000000")}

	got := Match("手 机", fields, DefaultThreshold)
	require.Len(t, got, 1)
	assert.Equal(t, "手机", got[0].Label)
	assert.Equal(t, 1.0, got[0].Score)
}

func TestMatchBelowThresholdExcluded(t *testing.T) {
	fields := []profile.Field{field("姓名", "张三")}
	assert.Empty(t, Match("住址", fields, DefaultThreshold))
}

func TestMatchThresholdBoundaryInclusive(t *testing.T) {
	fields := []profile.Field{field("ax", "v")}

	// similarity("ab","ax") == 0.5 exactly: included at the default threshold.
	got := Match("ab", fields, DefaultThreshold)
	require.Len(t, got, 1)
	assert.Equal(t, 0.5, got[0].Score)

	// Just above the score: excluded.
	assert.Empty(t, Match("ab", fields, 0.5001))
}

func TestMatchEmptyInputLaws(t *testing.T) {
	fields := []profile.Field{field("姓名", "张三")}
	assert.Empty(t, Match("", fields, DefaultThreshold))
	assert.Empty(t, Match("   ", fields, DefaultThreshold))
	assert.Empty(t, Match("姓名", nil, DefaultThreshold))
}

func TestMatchMultiValueExpansion(t *testing.T) {
	fields := []profile.Field{field("手机", "13800000000", "13900000000")}

	got := Match("手机", fields, DefaultThreshold)
	require.Len(t, got, 2)
	assert.Equal(t, "13800000000", got[0].Value)
	assert.Equal(t, "13900000000", got[1].Value)
	assert.Equal(t, got[0].Score, got[1].Score)
}

func TestMatchSkipsEmptyValues(t *testing.T) {
	fields := []profile.Field{field("姓名", ""), field("性别")}
	assert.Empty(t, Match("姓名", fields, DefaultThreshold))
}

func TestMatchOrderingStable(t *testing.T) {
	// Both labels score identically against the garbled text; load order and
	// value order must be preserved among ties.
	fields := []profile.Field{
		field("电话", "tel-a", "tel-b"),
		field("电池", "bat-a"),
		field("手机", "mob-a"),
	}

	got := Match("电Z", fields, 0.0)
	require.Len(t, got, 4)
	assert.Equal(t, "tel-a", got[0].Value)
	assert.Equal(t, "tel-b", got[1].Value)
	assert.Equal(t, "bat-a", got[2].Value)
	assert.Equal(t, "mob-a", got[3].Value)
}

func TestMatchDeterministic(t *testing.T) {
	fields := []profile.Field{
		field("电话", "010-12345678"),
		field("手机", "13800000000", "13900000000"),
		field("姓名", "张三"),
	}

	first := Match("手机号", fields, DefaultThreshold)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Match("手机号", fields, DefaultThreshold))
	}
}

func TestJoinFragments(t *testing.T) {
	assert.Equal(t, "姓 名", JoinFragments([]string{"姓", "名"}, " "))
	assert.Equal(t, "", JoinFragments(nil, " "))
}
