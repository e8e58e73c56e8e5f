package prediction

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrIncompleteReply is returned when a reply lacks one of the three
	// fields.
	ErrIncompleteReply = errors.New("reply is missing prediction, confidence or tip")

	// ErrBadConfidence is returned for confidences that are not a
	// percentage between 0 and 100.
	ErrBadConfidence = errors.New("confidence is not a percentage")
)

// fieldSeparator separates fields in the single-line reply layout.
const fieldSeparator = " / "

// ParseText recovers the fields from a reply in ReplyLayout. Segments are
// split on " / " and on line breaks, then each segment on its first ":".
// All three fields must be present.
func ParseText(text string) (Fields, error) {
	var f Fields
	for _, segment := range strings.Split(text, fieldSeparator) {
		for _, line := range strings.Split(segment, "\n") {
			key, value, ok := strings.Cut(line, ":")
			if !ok {
				continue
			}
			value = fieldValue(key, value)
			key = strings.ToLower(strings.Trim(key, " \t\r*-#_"))
			switch key {
			case "prediction":
				if f.Prediction == "" {
					f.Prediction = value
				}
			case "confidence":
				if f.Confidence == "" {
					f.Confidence = value
				}
			case "tip":
				if f.Tip == "" {
					f.Tip = value
				}
			}
		}
	}
	return f.normalize()
}

// emphasisMarks are markdown emphasis markers, longest first.
var emphasisMarks = []string{"**", "__", "*", "_"}

// fieldValue trims a value. When the key opened emphasis that closes after
// the colon ("**Tip:** Buy"), the closing marker is dropped; a marker pair
// wrapping the whole value is removed. Markers inside the value are kept.
func fieldValue(rawKey, value string) string {
	k := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(rawKey), "-#"))
	v := strings.TrimSpace(value)

	for _, m := range emphasisMarks {
		if strings.HasPrefix(k, m) {
			if !strings.HasSuffix(k, m) || len(k) == len(m) {
				v = strings.TrimSpace(strings.TrimPrefix(v, m))
			}
			break
		}
	}
	for _, m := range emphasisMarks {
		if len(v) <= 2*len(m) || !strings.HasPrefix(v, m) || !strings.HasSuffix(v, m) {
			continue
		}
		if inner := v[len(m) : len(v)-len(m)]; !strings.Contains(inner, m) {
			return strings.TrimSpace(inner)
		}
		break
	}
	return v
}

// parseJSONText accepts a text reply that is a JSON object, optionally
// wrapped in a markdown code fence.
func parseJSONText(text string) (Fields, bool) {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{") {
		return Fields{}, false
	}
	var f Fields
	if err := json.Unmarshal([]byte(s), &f); err != nil {
		return Fields{}, false
	}
	f, err := f.normalize()
	return f, err == nil
}

// normalize trims the fields, requires all three and rewrites the
// confidence as "<number>%".
func (f Fields) normalize() (Fields, error) {
	f.Prediction = strings.TrimSpace(f.Prediction)
	f.Tip = strings.TrimSpace(f.Tip)
	if f.Prediction == "" || f.Tip == "" || strings.TrimSpace(f.Confidence) == "" {
		return Fields{}, ErrIncompleteReply
	}
	c, err := NormalizeConfidence(f.Confidence)
	if err != nil {
		return Fields{}, err
	}
	f.Confidence = c
	return f, nil
}

// NormalizeConfidence turns "60", "60 %" or "60%" into "60%". Only plain
// decimals such as "75" or "75.5" are accepted.
func NormalizeConfidence(s string) (string, error) {
	num := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if !isDecimal(num) {
		return "", fmt.Errorf("%w: %q", ErrBadConfidence, s)
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrBadConfidence, s)
	}
	if v < 0 || v > 100 {
		return "", fmt.Errorf("%w: %q out of range", ErrBadConfidence, s)
	}
	return num + "%", nil
}

// isDecimal reports whether s is digits with an optional fraction.
func isDecimal(s string) bool {
	intPart, frac, hasFrac := strings.Cut(s, ".")
	if !allDigits(intPart) {
		return false
	}
	return !hasFrac || allDigits(frac)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
