package ops

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/contactbook/internal/errors"
)

func TestFind_RequiresExactlyOneCriterion(t *testing.T) {
	s, _ := openTestSession(t, nil)

	_, err := s.Find(FindInput{})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = s.Find(FindInput{Name: "Jane", Tag: "#x"})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	out, err := s.Find(FindInput{Name: "   ", Tag: "#x"})
	require.NoError(t, err)
	require.Equal(t, 0, out.Count)
	require.NotNil(t, out.Items)
}

func TestFind_ByBirthdayAndName(t *testing.T) {
	s, _ := openTestSession(t, nil)
	_, err := s.AddContact(AddContactInput{Name: "Jane"})
	require.NoError(t, err)
	_, err = s.SetBirthday("Jane", "24.03.1990")
	require.NoError(t, err)

	out, err := s.Find(FindInput{Birthday: "24.03.1990"})
	require.NoError(t, err)
	require.Equal(t, 1, out.Count)

	out, err = s.Find(FindInput{Name: "JANE"})
	require.NoError(t, err)
	require.Equal(t, 1, out.Count)
}

func TestSortByTag(t *testing.T) {
	s, _ := openTestSession(t, nil)
	for _, name := range []string{"zed", "Amy", "bob"} {
		_, err := s.AddContact(AddContactInput{Name: name})
		require.NoError(t, err)
		_, err = s.AddNote(NoteInput{Name: name, Text: "ping", Tags: "#urgent"})
		require.NoError(t, err)
	}

	out, err := s.SortByTag("#urgent")
	require.NoError(t, err)
	require.Equal(t, []string{"Amy", "bob", "zed"}, out.Names)

	out, err = s.SortByTag("#none")
	require.NoError(t, err)
	require.Empty(t, out.Names)
	require.NotNil(t, out.Names)

	_, err = s.SortByTag(" ")
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestBirthdays(t *testing.T) {
	s, _ := openTestSession(t, nil)
	for name, bd := range map[string]string{"A": "17.06.1990", "B": "15.06.1985", "C": "10.06.2000"} {
		_, err := s.AddContact(AddContactInput{Name: name})
		require.NoError(t, err)
		_, err = s.SetBirthday(name, bd)
		require.NoError(t, err)
	}

	// 2024-06-10 is a Monday.
	out := s.Birthdays(time.Date(2024, 6, 10, 9, 30, 0, 0, time.UTC))
	require.Equal(t, "10.06.2024", out.Today)
	require.ElementsMatch(t, []string{"C", "A (will be on Monday)", "B (from Saturday)"}, out.Labels)
	require.Equal(t, "C", out.Labels[0])

	empty := s.Birthdays(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NotNil(t, empty.Buckets)
	require.Empty(t, empty.Labels)
}
