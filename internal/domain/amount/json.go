package amount

import (
	"bytes"
	"strconv"
)

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(a.String())), nil
}

// UnmarshalJSON accepts a quoted decimal or a bare JSON number. Anything else,
// including null, objects and garbage strings, yields 0 and no error so a single
// corrupted field never rejects a whole save.
func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		s, err := strconv.Unquote(string(b))
		if err != nil {
			*a = Zero
			return nil
		}
		*a = FromString(s)
		return nil
	}
	*a = FromString(string(b))
	return nil
}
