package envvars

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// argPattern matches --env.KEY=VALUE. The key stops at the first '='.
var argPattern = regexp.MustCompile(`^--env\.([^=]+)=(.+)$`)

// maxLineSize is the longest env file line accepted. Inlined certificates
// exceed bufio's 64 KiB default.
const maxLineSize = 4 << 20

// ParseFile reads KEY=VALUE lines from path. Blank lines, lines starting
// with '#' and lines without '=' are skipped. The line is split at the
// first '=' and both sides are trimmed.
func ParseFile(path string) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open env file: %w", err)
	}
	defer func() { _ = f.Close() }()

	m := New()
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		key, value, ok := parseLine(scanner.Text())
		if ok {
			m.Set(key, value)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	return m, nil
}

func parseLine(line string) (string, string, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	key, value, found := strings.Cut(line, "=")
	if !found {
		return "", "", false
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", false
	}
	return key, strings.TrimSpace(value), true
}

// ParseArgs collects --env.KEY=VALUE tokens. Other tokens are ignored.
func ParseArgs(tokens []string) *Map {
	m := New()
	for _, tok := range tokens {
		if match := argPattern.FindStringSubmatch(tok); match != nil {
			m.Set(match[1], match[2])
		}
	}
	return m
}

// IsArg reports whether tok is an --env.KEY=VALUE token.
func IsArg(tok string) bool {
	return argPattern.MatchString(tok)
}

// SplitArgs separates --env.KEY=VALUE tokens from the rest of a command
// line so the flag parser never sees them. Tokens after a bare "--" are
// left untouched.
func SplitArgs(args []string) (rest, env []string) {
	for i, a := range args {
		if a == "--" {
			rest = append(rest, args[i:]...)
			break
		}
		if IsArg(a) {
			env = append(env, a)
			continue
		}
		rest = append(rest, a)
	}
	return rest, env
}

// Source is where a command gets its new variables from. A file takes
// precedence over arguments.
type Source struct {
	File string
	Args []string
}

// Load parses the source. provided is false when neither a file nor any
// --env argument was given, which tells update to keep the current
// environment.
func (s Source) Load() (m *Map, provided bool, err error) {
	if s.File != "" {
		m, err := ParseFile(s.File)
		if err != nil {
			return nil, false, err
		}
		return m, true, nil
	}
	m = ParseArgs(s.Args)
	return m, m.Len() > 0, nil
}
