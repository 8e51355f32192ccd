package docbind

import (
	"strings"
	"unicode"

	"github.com/jinzhu/inflection"
)

// normalizeKey canonicalizes an attribute key. External sources (drivers,
// exported dumps) may hand over symbol-style keys like ":title"; those are
// treated identically to "title".
func normalizeKey(k string) string {
	return strings.TrimPrefix(strings.TrimSpace(k), ":")
}

// demodularize strips any package or module qualifier, keeping the bare
// type name: "blog.Post" -> "Post".
func demodularize(name string) string {
	if i := strings.LastIndexAny(name, "./"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// underscore converts CamelCase to snake_case: "BlogPost" -> "blog_post".
func underscore(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// camelize converts snake_case to CamelCase: "blog_post" -> "BlogPost".
func camelize(s string) string {
	parts := strings.Split(s, "_")
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

// classify derives the canonical target type name from an association
// accessor name: "comments" -> "Comment", "author" -> "Author".
func classify(name string) string {
	return camelize(inflection.Singular(underscore(demodularize(name))))
}

// CollectionName derives the storage-collection identifier for a type name:
// demodularized, snake_cased, pluralized. "BlogPost" -> "blog_posts".
func CollectionName(typeName string) string {
	return inflection.Plural(underscore(demodularize(typeName)))
}
