package extract

import "github.com/ajitpratap0/framex/pkg/pool"

// ParseKeyValuePairs splits free text such as
//
//	level=info msg="request done" status:200, path='/api'
//
// into key/value pairs. Keys are separated from values by ':' or '=', and
// pairs by whitespace or any of ",;&{}". Single or double quotes group text
// containing separators, and a backslash takes the next character literally.
// A word with no value is kept with an empty value.
//
// All values are strings; keys are ordered by first appearance.
func ParseKeyValuePairs(raw string) *Record {
	rec := NewRecord()
	src := []rune(raw)

	scratch := pool.Runes.Get()
	defer pool.Runes.Put(scratch)

	var (
		buf   = *scratch
		key   string
		quote rune
	)
	defer func() { *scratch = buf }()

	flush := func() {
		if len(buf) == 0 {
			return
		}
		if key != "" {
			rec.Set(key, string(buf))
			key = ""
		} else {
			rec.Set(string(buf), "")
		}
		buf = buf[:0]
	}

	for i := 0; i < len(src); i++ {
		c := src[i]

		if quote != 0 && c == quote {
			quote = 0
			i++
			if i >= len(src) {
				break
			}
			c = src[i]
		}

		escaped := c == '\\'
		if escaped {
			i++
			if i >= len(src) {
				break
			}
			c = src[i]
		}

		if escaped || quote != 0 {
			buf = append(buf, c)
			continue
		}

		switch c {
		case ':', '=':
			if len(buf) > 0 {
				if key != "" {
					rec.Set(key, "")
				}
				key = string(buf)
				buf = buf[:0]
			}
		case '"', '\'':
			quote = c
			flush()
		case ' ', '\t', '\n', '\r', ',', ';', '&', '{', '}':
			flush()
		default:
			buf = append(buf, c)
		}
	}

	if key != "" {
		rec.Set(key, string(buf))
	} else if len(buf) > 0 {
		rec.Set(string(buf), "")
	}
	return rec
}
