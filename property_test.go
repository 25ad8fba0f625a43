package cstring

import (
	"errors"
	"strings"
	"testing"
	"testing/quick"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func beforeNUL(s string) string {
	if i := strings.IndexByte(s, 0); i >= 0 {
		return s[:i]
	}
	return s
}

func TestQuickCapacity(t *testing.T) {
	condition := func(in string) bool {
		s, err := FromString[byte, [9]byte](in)
		want := beforeNUL(in)
		if len(want) > 8 {
			return errors.Is(err, ErrCapacityExceeded) && s.IsEmpty()
		}
		return err == nil && s.Len() <= s.Cap() && s.String() == want
	}
	require.NoError(t, quick.Check(condition, &quick.Config{MaxCount: 500}))
}

func TestQuickTerminator(t *testing.T) {
	condition := func(raw []byte) bool {
		s, err := FromTerminated[byte, [17]byte](raw)
		if err != nil {
			return errors.Is(err, ErrCapacityExceeded)
		}
		first := -1
		for i, c := range s.Data() {
			if c == 0 {
				first = i
				break
			}
		}
		return first == s.Len() && first <= s.Cap()
	}
	require.NoError(t, quick.Check(condition, &quick.Config{MaxCount: 500}))
}

func TestQuickFill(t *testing.T) {
	condition := func(count uint8, ch byte) bool {
		n := int(count % 12)
		s, err := FromFill[byte, [9]byte](n, ch)
		if n > 8 {
			return errors.Is(err, ErrCapacityExceeded)
		}
		if err != nil {
			return false
		}
		if ch == 0 {
			return s.IsEmpty()
		}
		if s.Len() != n {
			return false
		}
		for _, c := range s.All() {
			if c != ch {
				return false
			}
		}
		return true
	}
	require.NoError(t, quick.Check(condition, &quick.Config{MaxCount: 500}))
}

func FuzzFromString(f *testing.F) {
	for _, seed := range []string{"", "abc", "hello world", "héllo", "a😀b", "x\x00y"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, in string) {
		want := beforeNUL(in)

		b, err := FromString[byte, [33]byte](in)
		if len(want) > 32 {
			require.ErrorIs(t, err, ErrCapacityExceeded)
		} else {
			require.NoError(t, err)
			require.Equal(t, want, b.String())
			require.Equal(t, []byte(want), b.Units())
		}

		if !utf8.ValidString(want) {
			return
		}
		w, err := FromString[rune, [33]rune](in)
		if utf8.RuneCountInString(want) > 32 {
			require.ErrorIs(t, err, ErrCapacityExceeded)
		} else {
			require.NoError(t, err)
			require.Equal(t, want, w.String())
		}
		u, err := FromString[uint16, [65]uint16](in)
		if err == nil {
			require.Equal(t, want, u.String())
		} else {
			require.ErrorIs(t, err, ErrCapacityExceeded)
		}
	})
}
