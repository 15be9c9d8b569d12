// Package ignore applies a slot's ignore rules.
//
// A rule is a regular expression. Against a raw buffer every match is
// removed; rules run in order and each sees the previous rule's output.
// Against a file-mode slot a rule must match an entry's entire base name,
// and matching entries are deleted with everything beneath them.
package ignore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Rule is one compiled ignore pattern.
type Rule struct {
	expr  string
	find  *regexp.Regexp
	whole *regexp.Regexp
}

// String returns the pattern as written.
func (r Rule) String() string { return r.expr }

// Rules is an ordered rule set.
type Rules []Rule

// Compile builds a rule set from pattern lines. Blank lines are skipped.
// Every valid pattern is kept; invalid ones are reported together in err so
// callers can decide whether to reject the set or run with what compiled.
func Compile(lines []string) (Rules, error) {
	var (
		rules Rules
		errs  []error
	)
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		r, err := compileRule(line)
		if err != nil {
			errs = append(errs, fmt.Errorf("rule %d %q: %w", i+1, line, err))
			continue
		}
		rules = append(rules, r)
	}
	return rules, errors.Join(errs...)
}

func compileRule(expr string) (Rule, error) {
	a, err := regexp.Compile(expr)
	if err != nil {
		return Rule{}, err
	}
	w, err := regexp.Compile(`^(?:` + expr + `)$`)
	if err != nil {
		return Rule{}, err
	}
	return Rule{expr: expr, find: a, whole: w}, nil
}

// Strings returns the patterns as written.
func (rs Rules) Strings() []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.expr
	}
	return out
}

// FilterBuffer removes every match of every rule from b.
func (rs Rules) FilterBuffer(b []byte) []byte {
	for _, r := range rs {
		b = r.find.ReplaceAll(b, nil)
	}
	return b
}

// MatchName reports whether any rule matches the whole of name.
func (rs Rules) MatchName(name string) bool {
	for _, r := range rs {
		if r.whole.MatchString(name) {
			return true
		}
	}
	return false
}

// FilterDir deletes the direct entries of dir whose names match a rule,
// skipping names in keep. It returns the names removed.
func (rs Rules) FilterDir(dir string, keep ...string) ([]string, error) {
	if len(rs) == 0 {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	var (
		removed []string
		errs    []error
	)
	for _, e := range entries {
		name := e.Name()
		if contains(keep, name) || !rs.MatchName(name) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(dir, name)); err != nil {
			errs = append(errs, err)
			continue
		}
		removed = append(removed, name)
	}
	return removed, errors.Join(errs...)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
