package suggestion

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/docspell/internal/doc"
	"github.com/jward/docspell/internal/span"
)

func lc(line, col int) span.LineColumn { return span.LineColumn{Line: line, Column: col} }

// literalChunk models `/// two literals` on line 1.
func literalChunk() *doc.Chunk {
	return doc.MustChunk("two literals", doc.Variant(doc.TripleSlash), []doc.Segment{{
		Range: span.Range{Start: 0, End: 12},
		Span:  span.Span{Start: lc(1, 5), End: lc(1, 16)},
	}})
}

func at(det Detector, origin doc.Origin, line, col int) Suggestion {
	return Suggestion{
		Detector: det,
		Origin:   origin,
		Span:     span.Span{Start: lc(line, col), End: lc(line, col+1)},
	}
}

func TestAssemble_ResolvesSpan(t *testing.T) {
	t.Parallel()
	c := literalChunk()

	sug, err := Assemble(Hunspell, "lib.rs", c, span.Range{Start: 4, End: 12}, "typo", "literal")
	require.NoError(t, err)
	assert.Equal(t, span.Span{Start: lc(1, 9), End: lc(1, 16)}, sug.Span)
	assert.Equal(t, "literals", sug.Text())
	assert.Equal(t, []string{"literal"}, sug.Replacements)
	assert.Equal(t, doc.Origin("lib.rs"), sug.Origin)
}

func TestAssemble_RejectsOutOfBounds(t *testing.T) {
	t.Parallel()
	_, err := Assemble(Rules, "lib.rs", literalChunk(), span.Range{Start: 4, End: 30}, "")
	assert.ErrorIs(t, err, doc.ErrRangeOutOfBounds)
}

func TestSet_JoinKeepsDuplicates(t *testing.T) {
	t.Parallel()
	a := NewSet()
	a.Add(at(Hunspell, "a.rs", 1, 5))
	b := NewSet()
	b.Add(at(Rules, "a.rs", 1, 5))
	b.Add(at(Rules, "b.rs", 2, 1))

	a.Join(b)
	a.Join(nil)
	assert.Equal(t, 2, a.Len())
	assert.Equal(t, 3, a.Total())
	assert.Len(t, a.Get("a.rs"), 2)
	assert.Equal(t, []doc.Origin{"a.rs", "b.rs"}, a.Origins())
}

func TestSet_JoinIsOrderIndependentAfterSort(t *testing.T) {
	t.Parallel()
	build := func(sugs ...Suggestion) *Set {
		s := NewSet()
		for _, sug := range sugs {
			s.Add(sug)
		}
		return s
	}
	x := build(at(Hunspell, "a.rs", 3, 1), at(Hunspell, "b.rs", 1, 1))
	y := build(at(Reflow, "a.rs", 1, 1), at(Rules, "a.rs", 3, 1))

	left := NewSet()
	left.Join(x)
	left.Join(y)
	left.Sort()

	right := NewSet()
	right.Join(y)
	right.Join(x)
	right.Sort()

	if diff := cmp.Diff(left.Flatten(), right.Flatten(), cmpopts.IgnoreFields(Suggestion{}, "Chunk")); diff != "" {
		t.Errorf("join order changed the sorted result (-left +right):\n%s", diff)
	}
}

func TestSet_SortCanonicalOrder(t *testing.T) {
	t.Parallel()
	s := NewSet()
	s.Add(at(Reflow, "z.rs", 1, 1))
	s.Add(at(Hunspell, "a.rs", 4, 2))
	s.Add(at(Rules, "a.rs", 1, 9))
	s.Add(at(Hunspell, "a.rs", 1, 9))
	s.Add(at(Hunspell, "a.rs", 1, 3))
	s.Sort()

	var got []string
	for _, sug := range s.All() {
		got = append(got, sug.Origin.String()+"@"+sug.Span.Start.String()+"/"+sug.Detector.String())
	}
	assert.Equal(t, []string{
		"a.rs@1:3/hunspell",
		"a.rs@1:9/hunspell",
		"a.rs@1:9/rules",
		"a.rs@4:2/hunspell",
		"z.rs@1:1/reflow",
	}, got)
}

func TestSet_AllStopsEarly(t *testing.T) {
	t.Parallel()
	s := NewSet()
	s.Add(at(Hunspell, "a.rs", 1, 1))
	s.Add(at(Hunspell, "b.rs", 1, 1))
	n := 0
	for range s.All() {
		n++
		break
	}
	assert.Equal(t, 1, n)
}

func TestDetector_TextRoundTrip(t *testing.T) {
	t.Parallel()
	for _, d := range AllDetectors() {
		b, err := d.MarshalText()
		require.NoError(t, err)
		var back Detector
		require.NoError(t, back.UnmarshalText(b))
		assert.Equal(t, d, back)
	}

	d, err := ParseDetector("LanguageTool")
	require.NoError(t, err)
	assert.Equal(t, LanguageTool, d)

	_, err = ParseDetector("nope")
	assert.Error(t, err)
	_, err = Detector(0).MarshalText()
	assert.Error(t, err)
}

func TestSuggestion_JSONShape(t *testing.T) {
	t.Parallel()
	sug, err := Assemble(Reflow, "lib.rs", literalChunk(), span.Range{Start: 0, End: 3}, "", "three")
	require.NoError(t, err)

	b, err := json.Marshal(sug)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"detector": "reflow",
		"origin": "lib.rs",
		"range": {"start": 0, "end": 3},
		"span": {"start": {"line": 1, "column": 5}, "end": {"line": 1, "column": 7}},
		"replacements": ["three"]
	}`, string(b))
}
