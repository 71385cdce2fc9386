package runner

import "strings"

// RedactedPlaceholder is the marker that replaces redacted secrets in
// captured output.
const RedactedPlaceholder = "[redacted]"

// redactionSet is an insertion ordered set of literal secret strings.
// Duplicates and empty strings are ignored.
type redactionSet struct {
	secrets []string
	seen    map[string]struct{}
}

func (s *redactionSet) add(secrets ...string) {
	for _, secret := range secrets {
		if secret == "" {
			continue
		}

		if s.seen == nil {
			s.seen = map[string]struct{}{}
		}
		if _, ok := s.seen[secret]; ok {
			continue
		}

		s.seen[secret] = struct{}{}
		s.secrets = append(s.secrets, secret)
	}
}

// redact replaces every occurrence of every secret with the placeholder in a
// single left-to-right pass. At each position the first matching secret in
// insertion order wins, and inserted placeholders are never rescanned, so a
// placeholder cannot leak a secret that happens to be one of its substrings.
func (s *redactionSet) redact(line string) string {
	if len(s.secrets) == 0 {
		return line
	}

	var b strings.Builder
	b.Grow(len(line))
	for i := 0; i < len(line); {
		matched := false
		for _, secret := range s.secrets {
			if strings.HasPrefix(line[i:], secret) {
				b.WriteString(RedactedPlaceholder)
				i += len(secret)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(line[i])
			i++
		}
	}

	return b.String()
}
