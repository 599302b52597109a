package jsonpath

import (
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultRegexpCacheSize = 128

// anyChar replaces an unescaped '.' outside a character class. Go regular
// expressions operate on code points, so only the line terminators need to
// be excluded.
const anyChar = `[^\n\r]`

// regexpCache memoizes compiled patterns keyed by the raw pattern text.
// A nil entry records a pattern that failed to compile. The underlying LRU
// is safe for concurrent use.
type regexpCache struct {
	anchored bool
	cache    *lru.Cache[string, *regexp.Regexp]
}

func newRegexpCache(size int, anchored bool) *regexpCache {
	cache, err := lru.New[string, *regexp.Regexp](size)
	if err != nil {
		panic(err)
	}
	return &regexpCache{anchored: anchored, cache: cache}
}

// call implements match (anchored) and search. Non-string arguments and
// invalid patterns yield false.
func (c *regexpCache) call(args ...any) any {
	value, ok := args[0].(string)
	if !ok {
		return false
	}
	pattern, ok := args[1].(string)
	if !ok {
		return false
	}

	re := c.compile(pattern)
	if re == nil {
		return false
	}
	return re.MatchString(value)
}

func (c *regexpCache) compile(pattern string) *regexp.Regexp {
	if re, ok := c.cache.Get(pattern); ok {
		return re
	}

	source := translatePattern(pattern)
	if c.anchored {
		source = anchorPattern(pattern, source)
	}

	re, err := regexp.Compile(source)
	if err != nil {
		re = nil
	}
	c.cache.Add(pattern, re)
	return re
}

// translatePattern rewrites every '.' that is neither escaped nor inside a
// character class into anyChar.
func translatePattern(pattern string) string {
	var (
		b         strings.Builder
		escaped   bool
		charClass bool
	)
	b.Grow(len(pattern))

	for _, r := range pattern {
		if escaped {
			b.WriteRune(r)
			escaped = false
			continue
		}

		switch r {
		case '.':
			if charClass {
				b.WriteRune(r)
			} else {
				b.WriteString(anyChar)
			}
		case '\\':
			escaped = true
			b.WriteRune(r)
		case '[':
			charClass = true
			b.WriteRune(r)
		case ']':
			charClass = false
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// anchorPattern makes source match the whole input unless the original
// pattern already carries an explicit ^ or $ anchor.
func anchorPattern(pattern, source string) string {
	if strings.HasPrefix(pattern, "^") || strings.HasSuffix(pattern, "$") {
		return source
	}
	return `^(?:` + source + `)$`
}
