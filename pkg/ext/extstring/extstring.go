// Package extstring provides text functions for builder programs.
// They compute a value from their arguments and ignore the call body, so
// they are meant to be used as parameters: +upper(title).
package extstring

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/sandrolain/gobuilder/pkg/ext/extutil"
	"github.com/sandrolain/gobuilder/pkg/functions"
)

// All returns all string function definitions.
func All() []functions.Def {
	return []functions.Def{
		Upper(),
		Lower(),
		Trim(),
		Concat(),
		Join(),
		Replace(),
		StartsWith(),
		EndsWith(),
		Capitalize(),
		TitleCase(),
		CamelCase(),
		SnakeCase(),
		KebabCase(),
		Repeat(),
		Template(),
	}
}

// Upper returns the definition for upper(str).
func Upper() functions.Def {
	return extutil.Value("upper", 1, 1, func(args []string) (string, error) {
		return strings.ToUpper(args[0]), nil
	})
}

// Lower returns the definition for lower(str).
func Lower() functions.Def {
	return extutil.Value("lower", 1, 1, func(args []string) (string, error) {
		return strings.ToLower(args[0]), nil
	})
}

// Trim returns the definition for trim(str).
func Trim() functions.Def {
	return extutil.Value("trim", 1, 1, func(args []string) (string, error) {
		return strings.TrimSpace(args[0]), nil
	})
}

// Concat returns the definition for concat(str...).
func Concat() functions.Def {
	return extutil.Value("concat", 0, -1, func(args []string) (string, error) {
		return strings.Join(args, ""), nil
	})
}

// Join returns the definition for join(sep, str...).
func Join() functions.Def {
	return extutil.Value("join", 1, -1, func(args []string) (string, error) {
		return strings.Join(args[1:], args[0]), nil
	})
}

// Replace returns the definition for replace(str, old, new).
func Replace() functions.Def {
	return extutil.Value("replace", 3, 3, func(args []string) (string, error) {
		return strings.ReplaceAll(args[0], args[1], args[2]), nil
	})
}

// StartsWith returns the definition for startsWith(str, prefix).
func StartsWith() functions.Def {
	return extutil.Value("startsWith", 2, 2, func(args []string) (string, error) {
		return extutil.FormatBool(strings.HasPrefix(args[0], args[1])), nil
	})
}

// EndsWith returns the definition for endsWith(str, suffix).
func EndsWith() functions.Def {
	return extutil.Value("endsWith", 2, 2, func(args []string) (string, error) {
		return extutil.FormatBool(strings.HasSuffix(args[0], args[1])), nil
	})
}

// Capitalize returns the definition for capitalize(str).
// Uppercases the first character, lowercases the rest.
func Capitalize() functions.Def {
	return extutil.Value("capitalize", 1, 1, func(args []string) (string, error) {
		return capitalize(args[0]), nil
	})
}

// TitleCase returns the definition for titleCase(str).
// Capitalizes every word.
func TitleCase() functions.Def {
	return extutil.Value("titleCase", 1, 1, func(args []string) (string, error) {
		words := strings.Fields(args[0])
		for i, w := range words {
			words[i] = capitalize(w)
		}
		return strings.Join(words, " "), nil
	})
}

func capitalize(str string) string {
	if str == "" {
		return str
	}
	runes := []rune(str)
	runes[0] = unicode.ToUpper(runes[0])
	for i := 1; i < len(runes); i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}

// splitWordsRe matches word separators and lower-to-upper case changes.
var splitWordsRe = regexp.MustCompile(`[_\-\s]+|([a-z])([A-Z])`)

func splitIntoWords(str string) []string {
	expanded := splitWordsRe.ReplaceAllStringFunc(str, func(s string) string {
		if len(s) == 2 && s[0] >= 'a' && s[0] <= 'z' {
			return string(s[0]) + " " + string(s[1])
		}
		return " "
	})
	return strings.Fields(expanded)
}

// CamelCase returns the definition for camelCase(str).
func CamelCase() functions.Def {
	return extutil.Value("camelCase", 1, 1, func(args []string) (string, error) {
		words := splitIntoWords(args[0])
		if len(words) == 0 {
			return "", nil
		}
		var b strings.Builder
		b.WriteString(strings.ToLower(words[0]))
		for _, w := range words[1:] {
			b.WriteString(capitalize(w))
		}
		return b.String(), nil
	})
}

// SnakeCase returns the definition for snakeCase(str).
func SnakeCase() functions.Def {
	return joinedCase("snakeCase", "_")
}

// KebabCase returns the definition for kebabCase(str).
func KebabCase() functions.Def {
	return joinedCase("kebabCase", "-")
}

func joinedCase(name, sep string) functions.Def {
	return extutil.Value(name, 1, 1, func(args []string) (string, error) {
		words := splitIntoWords(args[0])
		for i, w := range words {
			words[i] = strings.ToLower(w)
		}
		return strings.Join(words, sep), nil
	})
}

// Repeat returns the definition for repeat(str, n).
func Repeat() functions.Def {
	return extutil.Value("repeat", 2, 2, func(args []string) (string, error) {
		n, err := extutil.Int("repeat", args, 1)
		if err != nil {
			return "", err
		}
		if n < 0 {
			return "", fmt.Errorf("repeat: count must not be negative, got %d", n)
		}
		return strings.Repeat(args[0], n), nil
	})
}

var placeholderRe = regexp.MustCompile(`\{(\d+)\}`)

// Template returns the definition for template(str, values...).
// Replaces {0}, {1}, ... with the values that follow the template.
// Placeholders without a value are left as they are.
func Template() functions.Def {
	return extutil.Value("template", 1, -1, func(args []string) (string, error) {
		values := args[1:]
		return placeholderRe.ReplaceAllStringFunc(args[0], func(match string) string {
			var i int
			fmt.Sscanf(match, "{%d}", &i)
			if i < len(values) {
				return values[i]
			}
			return match
		}), nil
	})
}
