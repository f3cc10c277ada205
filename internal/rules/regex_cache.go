package rules

import (
	"fmt"
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/solatis/formlogic/internal/types"
)

const (
	// DefaultRegexCacheSize bounds compiled patterns kept per engine.
	DefaultRegexCacheSize = 128

	// DefaultMaxPatternLength rejects patterns longer than this many bytes.
	DefaultMaxPatternLength = 500

	maxPatternGroups  = 20
	maxPatternNesting = 5
)

// PatternCache compiles regex_match operands and keeps the most recently
// used ones. Not safe for concurrent use; each engine owns one.
type PatternCache struct {
	cache     *lru.Cache[string, *regexp.Regexp]
	maxLength int
}

// NewPatternCache returns a cache holding at most size compiled patterns.
func NewPatternCache(size, maxLength int) (*PatternCache, error) {
	if size <= 0 {
		size = DefaultRegexCacheSize
	}
	if maxLength <= 0 {
		maxLength = DefaultMaxPatternLength
	}
	c, err := lru.New[string, *regexp.Regexp](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create pattern cache: %w", err)
	}
	return &PatternCache{cache: c, maxLength: maxLength}, nil
}

// Compile returns the compiled pattern, compiling and caching on miss.
// Errors wrap types.ErrPatternTooComplex or types.ErrInvalidPattern.
// A nil cache compiles without caching.
func (p *PatternCache) Compile(pattern string) (*regexp.Regexp, error) {
	if p == nil {
		return compilePattern(pattern, DefaultMaxPatternLength)
	}
	if re, ok := p.cache.Get(pattern); ok {
		return re, nil
	}
	re, err := compilePattern(pattern, p.maxLength)
	if err != nil {
		return nil, err
	}
	p.cache.Add(pattern, re)
	return re, nil
}

func compilePattern(pattern string, maxLength int) (*regexp.Regexp, error) {
	if err := CheckPatternComplexity(pattern, maxLength); err != nil {
		return nil, err
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", types.ErrInvalidPattern, pattern, err)
	}
	return re, nil
}

// Len returns the number of cached patterns.
func (p *PatternCache) Len() int {
	return p.cache.Len()
}

// Purge drops every cached pattern.
func (p *PatternCache) Purge() {
	p.cache.Purge()
}

// CheckPatternComplexity rejects patterns that are too long, have too many
// groups or nest groups too deeply. Matching is RE2 and runs in linear time,
// so quantifier shape is not restricted.
func CheckPatternComplexity(pattern string, maxLength int) error {
	if maxLength > 0 && len(pattern) > maxLength {
		return fmt.Errorf("%w: length %d exceeds %d", types.ErrPatternTooComplex, len(pattern), maxLength)
	}
	if strings.Count(pattern, "(") > maxPatternGroups {
		return fmt.Errorf("%w: more than %d groups", types.ErrPatternTooComplex, maxPatternGroups)
	}

	depth, deepest := 0, 0
	escaped := false
	for _, ch := range pattern {
		switch {
		case escaped:
			escaped = false
		case ch == '\\':
			escaped = true
		case ch == '(':
			depth++
			if depth > deepest {
				deepest = depth
			}
		case ch == ')':
			depth--
		}
	}
	if deepest > maxPatternNesting {
		return fmt.Errorf("%w: nesting depth %d exceeds %d", types.ErrPatternTooComplex, deepest, maxPatternNesting)
	}
	return nil
}
