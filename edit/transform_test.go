package edit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReplace(t *testing.T) {
	got, err := Replace("a", "b")("aaa")
	require.NoError(t, err)
	require.Equal(t, "baa", got)

	// No occurrence: pass through unchanged.
	got, err = Replace("z", "b")("aaa")
	require.NoError(t, err)
	require.Equal(t, "aaa", got)
}

func TestReplaceAll(t *testing.T) {
	got, err := ReplaceAll("a", "b")("aaa")
	require.NoError(t, err)
	require.Equal(t, "bbb", got)
}

func TestAppendPrepend(t *testing.T) {
	got, err := Append(" world")("hello")
	require.NoError(t, err)
	require.Equal(t, "hello world", got)

	got, err = Prepend("well, ")("hello")
	require.NoError(t, err)
	require.Equal(t, "well, hello", got)

	// Always valid, even on empty text.
	got, err = Append("x")("")
	require.NoError(t, err)
	require.Equal(t, "x", got)
}

func TestInsertLine(t *testing.T) {
	cases := []struct {
		name string
		in   string
		n    int
		text string
		want string
		err  bool
	}{
		{name: "at start", in: "b\nc", n: 1, text: "a", want: "a\nb\nc"},
		{name: "in middle", in: "a\nc", n: 2, text: "b", want: "a\nb\nc"},
		{name: "at end plus one", in: "a\nb", n: 3, text: "c", want: "a\nb\nc"},
		{name: "trailing newline preserved", in: "a\nb\n", n: 2, text: "x", want: "a\nx\nb\n"},
		{name: "empty text one line", in: "", n: 1, text: "x", want: "x\n"},
		{name: "zero is out of range", in: "a\nb", n: 0, text: "x", err: true},
		{name: "count plus two is out of range", in: "a\nb", n: 4, text: "x", err: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := InsertLine(tc.n, tc.text)(tc.in)
			if tc.err {
				require.ErrorIs(t, err, ErrRange)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

// Inserting at lineCount+1 appends a final line,
// the same as Append with a leading separator.
func TestInsertAtEndIsAppend(t *testing.T) {
	const in = "a\nb"

	inserted, err := InsertLine(3, "c")(in)
	require.NoError(t, err)
	appended, err := Append("\nc")(in)
	require.NoError(t, err)
	require.Equal(t, appended, inserted)
}

func TestDeleteLine(t *testing.T) {
	cases := []struct {
		name string
		in   string
		n    int
		want string
		err  bool
	}{
		{name: "first", in: "a\nb\nc", n: 1, want: "b\nc"},
		{name: "middle", in: "a\nb\nc", n: 2, want: "a\nc"},
		{name: "last", in: "a\nb\nc", n: 3, want: "a\nb"},
		{name: "only line with trailing newline", in: "a\n", n: 1, want: ""},
		{name: "zero out of range", in: "a", n: 0, err: true},
		{name: "past end out of range", in: "a\nb", n: 3, err: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DeleteLine(tc.n)(tc.in)
			if tc.err {
				require.ErrorIs(t, err, ErrRange)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestReplaceLine(t *testing.T) {
	cases := []struct {
		name string
		in   string
		n    int
		text string
		want string
		err  bool
	}{
		{name: "middle", in: "a\nb\nc", n: 2, text: "B", want: "a\nB\nc"},
		{name: "trailing newline preserved", in: "a\nb\n", n: 2, text: "B", want: "a\nB\n"},
		{name: "zero out of range", in: "a", n: 0, text: "x", err: true},
		{name: "past end out of range", in: "a\nb", n: 3, text: "x", err: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ReplaceLine(tc.n, tc.text)(tc.in)
			if tc.err {
				require.ErrorIs(t, err, ErrRange)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

// Delete and insert with the same arguments round-trip
// regardless of a trailing newline.
func TestLineRoundTrip(t *testing.T) {
	for _, in := range []string{"a\nb\nc", "a\nb\nc\n"} {
		deleted, err := DeleteLine(2)(in)
		require.NoError(t, err)
		restored, err := InsertLine(2, "b")(deleted)
		require.NoError(t, err)
		require.Equal(t, in, restored)
	}
}
