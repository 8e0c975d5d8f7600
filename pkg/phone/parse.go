package phone

import (
	"fmt"
	"strings"
)

// ParseError reports a malformed phone spec.
type ParseError struct {
	Spec    string
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid phone spec %q: %s", e.Spec, e.Message)
}

// Parse reads the compact phone form produced by Phone.Spec:
//
//	null
//	vowel
//	plosive/<place>/<voiced|voiceless>[+attachment...]
//	fricative/<place>/<voiced|voiceless>[+attachment...]
//	affricate/<start>/<end>/<voiced|voiceless>[+attachment...]
//
// Matching is case-insensitive and surrounding whitespace is ignored.
func Parse(spec string) (Phone, error) {
	fail := func(format string, args ...any) (Phone, error) {
		return Phone{}, &ParseError{Spec: spec, Message: fmt.Sprintf(format, args...)}
	}

	chunks := strings.Split(strings.TrimSpace(spec), "+")
	head := strings.Split(chunks[0], "/")

	var as Attachments
	for _, name := range chunks[1:] {
		a, err := ParseAttachment(strings.TrimSpace(name))
		if err != nil {
			return fail("%v", err)
		}
		as = as.With(a)
	}

	kind := strings.ToLower(strings.TrimSpace(head[0]))
	args := head[1:]
	for i := range args {
		args[i] = strings.TrimSpace(args[i])
	}

	switch kind {
	case "null", "":
		if len(args) != 0 || as != 0 {
			return fail("null takes no arguments")
		}
		return Null(), nil

	case "vowel":
		if len(args) != 0 || as != 0 {
			return fail("vowel takes no arguments")
		}
		return Vowel(), nil

	case "plosive":
		if len(args) != 2 {
			return fail("plosive needs <place>/<voicing>")
		}
		var place PlosivePlace
		if err := place.UnmarshalText([]byte(args[0])); err != nil {
			return fail("%v", err)
		}
		voiced, err := parseVoicing(args[1])
		if err != nil {
			return fail("%v", err)
		}
		return Phone{Kind: KindPlosive, Place: place, Voiced: voiced, Attachments: as}, nil

	case "fricative":
		if len(args) != 2 {
			return fail("fricative needs <place>/<voicing>")
		}
		var place FricativePlace
		if err := place.UnmarshalText([]byte(args[0])); err != nil {
			return fail("%v", err)
		}
		voiced, err := parseVoicing(args[1])
		if err != nil {
			return fail("%v", err)
		}
		return Phone{Kind: KindFricative, Release: place, Voiced: voiced, Attachments: as}, nil

	case "affricate", "affricative":
		if len(args) != 3 {
			return fail("affricate needs <start>/<end>/<voicing>")
		}
		var start PlosivePlace
		if err := start.UnmarshalText([]byte(args[0])); err != nil {
			return fail("%v", err)
		}
		var end FricativePlace
		if err := end.UnmarshalText([]byte(args[1])); err != nil {
			return fail("%v", err)
		}
		voiced, err := parseVoicing(args[2])
		if err != nil {
			return fail("%v", err)
		}
		return Phone{Kind: KindAffricative, Place: start, Release: end, Voiced: voiced, Attachments: as}, nil

	default:
		return fail("unknown kind %q", kind)
	}
}

func parseVoicing(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "voiced":
		return true, nil
	case "voiceless", "unvoiced":
		return false, nil
	default:
		return false, fmt.Errorf("unknown voicing %q", s)
	}
}
