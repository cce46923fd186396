package contact

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/contactbook/internal/errors"
)

func newTestRecord(t *testing.T, name string) *Record {
	t.Helper()
	r, err := NewRecord(name)
	if err != nil {
		t.Fatalf("NewRecord(%q) error = %v", name, err)
	}
	return r
}

func TestNewRecord(t *testing.T) {
	r := newTestRecord(t, "John  Doe")
	if r.Name().String() != "John Doe" {
		t.Errorf("Name() = %q, want %q", r.Name().String(), "John Doe")
	}
	if r.Key() != "john doe" {
		t.Errorf("Key() = %q, want %q", r.Key(), "john doe")
	}

	if _, err := NewRecord(""); !errors.Is(err, errors.ErrInvalidName) {
		t.Errorf("NewRecord(\"\") error = %v, want INVALID_NAME", err)
	}
}

func TestRecord_Phones(t *testing.T) {
	r := newTestRecord(t, "Jane")

	require.NoError(t, r.AddPhone("0987654321"))
	require.NoError(t, r.AddPhone("1234567890"))
	require.NoError(t, r.AddPhone("0987654321")) // duplicates allowed

	err := r.AddPhone("12345")
	require.True(t, errors.Is(err, errors.ErrInvalidPhone))
	require.Len(t, r.Phones(), 3, "invalid phone must leave record unchanged")

	require.NoError(t, r.EditPhone(1, "1111111111"))
	require.Equal(t, Phone("1111111111"), r.Phones()[1])

	err = r.EditPhone(3, "2222222222")
	require.True(t, errors.Is(err, errors.ErrIndexOutOfRange))
	err = r.EditPhone(-1, "2222222222")
	require.True(t, errors.Is(err, errors.ErrIndexOutOfRange))
	err = r.EditPhone(0, "bad")
	require.True(t, errors.Is(err, errors.ErrInvalidPhone))
	require.Equal(t, Phone("0987654321"), r.Phones()[0])

	p, ok := r.FindPhone("1111111111")
	require.True(t, ok)
	require.Equal(t, Phone("1111111111"), p)

	require.Equal(t, 2, r.RemovePhone("0987654321"))
	require.Equal(t, []Phone{"1111111111"}, r.Phones())
	require.Equal(t, 0, r.RemovePhone("0000000000"), "removing absent phone is a no-op")
}

func TestRecord_Birthday(t *testing.T) {
	r := newTestRecord(t, "Jane")

	_, ok := r.Birthday()
	require.False(t, ok)
	require.Equal(t, NotSet, r.ShowBirthday())

	require.NoError(t, r.SetBirthday("24.03.1990"))
	require.Equal(t, "24.03.1990", r.ShowBirthday())

	err := r.SetBirthday("30.02.2024")
	require.True(t, errors.Is(err, errors.ErrInvalidDate))
	require.Equal(t, "24.03.1990", r.ShowBirthday())
}

func TestRecord_Email(t *testing.T) {
	r := newTestRecord(t, "Jane")

	err := r.EditEmail("a@b.com")
	require.True(t, errors.Is(err, errors.ErrNoEmail))

	require.True(t, errors.Is(r.AddEmail("not-an-email"), errors.ErrInvalidEmail))
	require.NoError(t, r.AddEmail("jane@example.com"))
	require.NoError(t, r.EditEmail("jane@work.org"))

	e, ok := r.Email()
	require.True(t, ok)
	require.Equal(t, Email("jane@work.org"), e)

	err = r.DeleteEmail("jane@example.com")
	require.True(t, errors.Is(err, errors.ErrNotFound))
	require.NoError(t, r.DeleteEmail("jane@work.org"))

	_, ok = r.Email()
	require.False(t, ok)
	require.True(t, errors.Is(r.DeleteEmail("jane@work.org"), errors.ErrNotFound))
}

func TestRecord_Addresses(t *testing.T) {
	r := newTestRecord(t, "Jane")

	require.True(t, errors.Is(r.EditAddress("1 Main St"), errors.ErrNoAddress))
	require.True(t, errors.Is(r.DeleteAddress(), errors.ErrNoAddress))

	require.NoError(t, r.AddAddress("Old St"))
	require.NoError(t, r.AddAddress("New St"))
	require.Equal(t, []string{"New St", "Old St"}, r.Addresses())

	canonical, ok := r.Address()
	require.True(t, ok)
	require.Equal(t, "New St", canonical, "latest address is canonical")

	require.True(t, errors.Is(r.AddAddress("  "), errors.ErrInvalidAddress))
	require.Equal(t, []string{"New St", "Old St"}, r.Addresses())

	require.NoError(t, r.EditAddress("3 New Rd"))
	require.Equal(t, []string{"3 New Rd"}, r.Addresses())

	require.NoError(t, r.DeleteAddress())
	_, ok = r.Address()
	require.False(t, ok)
}

func TestRecord_RestoreAddresses(t *testing.T) {
	r := newTestRecord(t, "Jane")

	require.NoError(t, r.RestoreAddresses([]string{"Current Rd", "Past Ave"}))
	require.Equal(t, []string{"Current Rd", "Past Ave"}, r.Addresses())
	canonical, _ := r.Address()
	require.Equal(t, "Current Rd", canonical)

	err := r.RestoreAddresses([]string{"Fine St", " "})
	require.True(t, errors.Is(err, errors.ErrInvalidAddress))
	require.Equal(t, []string{"Current Rd", "Past Ave"}, r.Addresses(), "failed restore leaves addresses unchanged")

	require.NoError(t, r.RestoreAddresses(nil))
	_, ok := r.Address()
	require.False(t, ok)
}

func TestRecord_Notes(t *testing.T) {
	r := newTestRecord(t, "Jane")

	require.NoError(t, r.AddNote("Meeting tomorrow", []string{"#urgent"}))
	require.NoError(t, r.AddNote("Call back", nil))
	require.True(t, errors.Is(r.AddNote("", nil), errors.ErrInvalidNote))
	require.True(t, errors.Is(r.AddNote("x", []string{"bad"}), errors.ErrInvalidHashtag))
	require.Len(t, r.Notes(), 2)

	require.NoError(t, r.EditNote(1, "Call back today", []string{"#phone"}))
	require.Equal(t, "Call back today", r.Notes()[1].Text())

	err := r.EditNote(0, "Changed", []string{"#ok", "bad"})
	require.True(t, errors.Is(err, errors.ErrInvalidHashtag))
	require.Equal(t, "Meeting tomorrow", r.Notes()[0].Text(), "failed edit must not touch the note")
	require.True(t, r.Notes()[0].HasTag("#urgent"))

	require.True(t, r.HasTag("#phone"))
	require.False(t, r.HasTag("phone"))
}

func TestRecord_NoteIndexOutOfRange(t *testing.T) {
	r := newTestRecord(t, "Jane")
	require.NoError(t, r.AddNote("only", nil))

	for _, idx := range []int{-1, 1, 5} {
		err := r.EditNote(idx, "x", nil)
		require.True(t, errors.Is(err, errors.ErrIndexOutOfRange), "EditNote(%d)", idx)
		err = r.DeleteNote(idx)
		require.True(t, errors.Is(err, errors.ErrIndexOutOfRange), "DeleteNote(%d)", idx)
		require.Len(t, r.Notes(), 1)
	}

	require.NoError(t, r.DeleteNote(0))
	require.Empty(t, r.Notes())
}

func TestRecord_HashtagOnNote(t *testing.T) {
	r := newTestRecord(t, "Jane")
	require.NoError(t, r.AddNote("Meeting", []string{"#urgent"}))

	out, err := r.AddHashtagToNote(0, "work")
	require.NoError(t, err)
	require.Equal(t, HashtagAdded, out)
	require.True(t, r.Notes()[0].HasTag("#work"))

	out, err = r.AddHashtagToNote(0, "#urgent")
	require.NoError(t, err)
	require.Equal(t, HashtagExists, out)
	require.Len(t, r.Notes()[0].Hashtags(), 2)

	_, err = r.AddHashtagToNote(0, "two words")
	require.True(t, errors.Is(err, errors.ErrInvalidHashtag))

	_, err = r.AddHashtagToNote(2, "#x")
	require.True(t, errors.Is(err, errors.ErrIndexOutOfRange))

	out, err = r.RemoveHashtagFromNote(0, "#urgent")
	require.NoError(t, err)
	require.Equal(t, HashtagRemoved, out)
	require.False(t, r.Notes()[0].HasTag("#urgent"))

	out, err = r.RemoveHashtagFromNote(0, "urgent")
	require.NoError(t, err)
	require.Equal(t, HashtagNotFound, out)

	_, err = r.RemoveHashtagFromNote(-1, "#x")
	require.True(t, errors.Is(err, errors.ErrIndexOutOfRange))
}

func TestRecord_NotesAreIsolatedFromCallers(t *testing.T) {
	r := newTestRecord(t, "Jane")
	require.NoError(t, r.AddNote("Meeting", []string{"#a"}))

	snapshot := r.Notes()
	_, err := r.AddHashtagToNote(0, "#b")
	require.NoError(t, err)

	require.False(t, snapshot[0].HasTag("#b"), "earlier snapshot must not see later tag")
}

func TestRecord_Render(t *testing.T) {
	r := newTestRecord(t, "John Doe")
	require.Equal(t,
		"Contact name: John Doe, phones: , email: not set, birthday: not set, notes: , address: not set",
		r.Render())

	require.NoError(t, r.AddPhone("0987654321"))
	require.NoError(t, r.AddPhone("1234567890"))
	require.NoError(t, r.AddEmail("john@example.com"))
	require.NoError(t, r.SetBirthday("24.03.1990"))
	require.NoError(t, r.AddNote("Meeting tomorrow", []string{"#urgent", "#work"}))
	require.NoError(t, r.AddNote("Bring cake", nil))
	require.NoError(t, r.AddAddress("123 Main St"))
	require.NoError(t, r.AddAddress("PO Box 7"))

	require.Equal(t,
		"Contact name: John Doe, phones: 0987654321; 1234567890, email: john@example.com, "+
			"birthday: 24.03.1990, notes: Meeting tomorrow (tags: #urgent #work); Bring cake (tags: ), "+
			"address: PO Box 7, 123 Main St",
		r.Render())
}
