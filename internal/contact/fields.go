package contact

import (
	"regexp"
	"strings"
	"time"

	"github.com/hpungsan/contactbook/internal/errors"
)

// Field limits.
const (
	PhoneDigits     = 10
	NoteMaxChars    = 280
	AddressMaxChars = 120

	// BirthdayLayout is the only accepted textual form of a birthday (DD.MM.YYYY).
	BirthdayLayout = "02.01.2006"
)

var (
	phoneRegex   = regexp.MustCompile(`^[0-9]{10}$`)
	emailRegex   = regexp.MustCompile(`^[A-Za-z0-9_.+-]+@([A-Za-z0-9-]+\.)+[A-Za-z0-9-]{2,}$`)
	hashtagRegex = regexp.MustCompile(`^#\w+$`)
)

// Name is a contact's display name: a first name and an optional last name.
type Name struct {
	First string
	Last  string
}

// ParseName splits raw into one or two tokens.
func ParseName(raw string) (Name, error) {
	parts := strings.Fields(raw)
	switch len(parts) {
	case 1:
		return Name{First: parts[0]}, nil
	case 2:
		return Name{First: parts[0], Last: parts[1]}, nil
	default:
		return Name{}, errors.NewInvalidName(raw)
	}
}

// String returns the tokens joined by a single space.
func (n Name) String() string {
	if n.Last == "" {
		return n.First
	}
	return n.First + " " + n.Last
}

// Key returns the directory key for the name.
func (n Name) Key() string {
	return Normalize(n.String())
}

// Phone is exactly ten ASCII digits.
type Phone string

// ParsePhone validates raw as a phone number.
func ParsePhone(raw string) (Phone, error) {
	if !phoneRegex.MatchString(raw) {
		return "", errors.NewInvalidPhone(raw)
	}
	return Phone(raw), nil
}

func (p Phone) String() string { return string(p) }

// Birthday is a calendar date without a time component.
type Birthday struct {
	date time.Time
}

// ParseBirthday parses raw strictly as DD.MM.YYYY. Impossible dates such as
// 30.02.2024 and unpadded forms such as 1.2.2000 are rejected.
func ParseBirthday(raw string) (Birthday, error) {
	t, err := time.Parse(BirthdayLayout, raw)
	if err != nil {
		return Birthday{}, errors.NewInvalidDate(raw)
	}
	return Birthday{date: t}, nil
}

func (b Birthday) String() string { return b.date.Format(BirthdayLayout) }

// Time returns the birthday as a UTC midnight time.
func (b Birthday) Time() time.Time { return b.date }

// Month returns the month of the birthday.
func (b Birthday) Month() time.Month { return b.date.Month() }

// Day returns the day of month of the birthday.
func (b Birthday) Day() int { return b.date.Day() }

// Email is a local-part@domain address.
type Email string

// ParseEmail validates raw as an email address.
func ParseEmail(raw string) (Email, error) {
	if !emailRegex.MatchString(raw) {
		return "", errors.NewInvalidEmail(raw)
	}
	return Email(raw), nil
}

func (e Email) String() string { return string(e) }

// Hashtag is '#' followed by one or more word characters.
type Hashtag string

// ParseHashtag validates raw as a hashtag, leading '#' included.
func ParseHashtag(raw string) (Hashtag, error) {
	if !hashtagRegex.MatchString(raw) {
		return "", errors.NewInvalidHashtag(raw)
	}
	return Hashtag(raw), nil
}

func (h Hashtag) String() string { return string(h) }

// ParseHashtags splits a whitespace-separated tag list ("#a #b") into tokens.
// Tokens are not validated here; NewNote does that.
func ParseHashtags(s string) []string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// ParseAddress validates raw as a free-text address of 1..AddressMaxChars characters.
func ParseAddress(raw string) (string, error) {
	chars := CountChars(raw)
	if strings.TrimSpace(raw) == "" || chars > AddressMaxChars {
		return "", errors.NewInvalidAddress(chars, AddressMaxChars)
	}
	return raw, nil
}
