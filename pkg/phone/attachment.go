package phone

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Attachment is a manner feature layered on top of an obstruent.
type Attachment uint8

// Obstruent attachments. Preaspirated and Aspirated are mutually exclusive in
// effect; when both are present Preaspirated wins.
const (
	Ejective Attachment = iota
	Preaspirated
	Aspirated
	Breathy
	Creaky

	attachmentCount
)

var attachmentNames = [attachmentCount]string{
	Ejective:     "Ejective",
	Preaspirated: "Preaspirated",
	Aspirated:    "Aspirated",
	Breathy:      "Breathy",
	Creaky:       "Creaky",
}

// String returns the canonical attachment name.
func (a Attachment) String() string {
	if a >= attachmentCount {
		return fmt.Sprintf("Attachment(%d)", uint8(a))
	}
	return attachmentNames[a]
}

// ParseAttachment converts a name to an Attachment, ignoring case.
func ParseAttachment(s string) (Attachment, error) {
	for i, name := range attachmentNames {
		if strings.EqualFold(s, name) {
			return Attachment(i), nil
		}
	}
	return 0, fmt.Errorf("unknown attachment %q", s)
}

// Attachments is an unordered set of attachments stored as a bitmask.
// The zero value is the empty set.
type Attachments uint8

// NewAttachments builds a set from the given attachments. Duplicates collapse.
func NewAttachments(as ...Attachment) Attachments {
	var set Attachments
	for _, a := range as {
		set = set.With(a)
	}
	return set
}

// Has reports whether a is in the set.
func (s Attachments) Has(a Attachment) bool {
	return a < attachmentCount && s&(1<<a) != 0
}

// With returns a copy of the set with a added.
func (s Attachments) With(a Attachment) Attachments {
	if a >= attachmentCount {
		return s
	}
	return s | 1<<a
}

// Without returns a copy of the set with a removed.
func (s Attachments) Without(a Attachment) Attachments {
	if a >= attachmentCount {
		return s
	}
	return s &^ (1 << a)
}

// Len returns the number of attachments in the set.
func (s Attachments) Len() int {
	n := 0
	for a := Attachment(0); a < attachmentCount; a++ {
		if s.Has(a) {
			n++
		}
	}
	return n
}

// Slice returns the members in canonical (declaration) order.
func (s Attachments) Slice() []Attachment {
	out := make([]Attachment, 0, s.Len())
	for a := Attachment(0); a < attachmentCount; a++ {
		if s.Has(a) {
			out = append(out, a)
		}
	}
	return out
}

func (s Attachments) names() []string {
	out := make([]string, 0, s.Len())
	for _, a := range s.Slice() {
		out = append(out, a.String())
	}
	return out
}

// MarshalJSON encodes the set as an array of names in canonical order.
func (s Attachments) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.names())
}

// UnmarshalJSON decodes an array of attachment names.
func (s *Attachments) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	var set Attachments
	for _, name := range names {
		a, err := ParseAttachment(name)
		if err != nil {
			return err
		}
		set = set.With(a)
	}
	*s = set
	return nil
}

// MarshalYAML encodes the set as a sequence of names.
func (s Attachments) MarshalYAML() (interface{}, error) {
	return s.names(), nil
}
