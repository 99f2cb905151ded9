package highlight

import (
	"sort"
	"strings"
)

// keywordLists is the vocabulary per canonical language key. Entries are
// case-sensitive.
var keywordLists = map[string][]string{
	"python": {"def", "class", "import", "from", "return", "if", "elif", "else", "for", "while",
		"try", "except", "finally", "with", "as", "lambda", "yield", "raise", "pass",
		"break", "continue", "and", "or", "not", "in", "is", "None", "True", "False",
		"async", "await", "global", "nonlocal", "assert", "del"},
	"javascript": {"function", "const", "let", "var", "return", "if", "else", "for", "while",
		"switch", "case", "break", "continue", "try", "catch", "finally", "throw",
		"new", "this", "class", "extends", "import", "export", "default", "from",
		"async", "await", "yield", "typeof", "instanceof", "null", "undefined",
		"true", "false", "of", "in"},
	"java": {"public", "private", "protected", "class", "interface", "extends", "implements",
		"static", "final", "void", "return", "if", "else", "for", "while", "do", "switch",
		"case", "break", "continue", "try", "catch", "finally", "throw", "throws", "new",
		"this", "super", "import", "package", "null", "true", "false", "instanceof"},
	"go": {"func", "package", "import", "return", "if", "else", "for", "range", "switch", "case",
		"default", "break", "continue", "go", "defer", "select", "chan", "map", "struct",
		"interface", "type", "const", "var", "nil", "true", "false", "make", "new", "append"},
	"rust": {"fn", "let", "mut", "const", "pub", "mod", "use", "struct", "enum", "impl", "trait",
		"return", "if", "else", "for", "while", "loop", "match", "break", "continue",
		"move", "ref", "self", "Self", "true", "false", "None", "Some", "Ok", "Err", "async", "await"},
	"sql": {"SELECT", "FROM", "WHERE", "INSERT", "UPDATE", "DELETE", "CREATE", "DROP", "ALTER",
		"TABLE", "INDEX", "JOIN", "LEFT", "RIGHT", "INNER", "OUTER", "ON", "AND", "OR", "NOT",
		"IN", "LIKE", "BETWEEN", "IS", "NULL", "ORDER", "BY", "GROUP", "HAVING", "LIMIT",
		"OFFSET", "UNION", "AS", "DISTINCT", "COUNT", "SUM", "AVG", "MAX", "MIN", "VALUES", "SET"},
	"bash": {"if", "then", "else", "elif", "fi", "for", "while", "do", "done", "case", "esac",
		"function", "return", "exit", "echo", "export", "local", "readonly", "shift",
		"true", "false", "in"},
	"yaml": {"true", "false", "null", "yes", "no", "on", "off", "True", "False", "None",
		"YES", "NO", "ON", "OFF", "NULL", "Null"},
	"json": {"true", "false", "null"},
	"html": {"html", "head", "body", "div", "span", "p", "a", "img", "script", "style",
		"link", "meta", "title", "h1", "h2", "h3", "h4", "h5", "h6", "ul", "ol", "li",
		"table", "tr", "td", "th", "thead", "tbody", "form", "input", "button", "textarea",
		"select", "option", "label", "section", "article", "header", "footer", "nav", "main",
		"aside", "iframe", "canvas", "svg", "video", "audio", "source", "br", "hr"},
	"cpp": {"class", "struct", "public", "private", "protected", "virtual", "const", "static",
		"void", "int", "float", "double", "char", "bool", "if", "else", "for", "while",
		"do", "switch", "case", "break", "continue", "return", "new", "delete", "this",
		"namespace", "using", "template", "typename", "true", "false", "nullptr", "auto",
		"enum", "union", "typedef", "sizeof", "const_cast", "static_cast", "dynamic_cast",
		"reinterpret_cast", "try", "catch", "throw", "friend", "operator", "inline",
		"explicit", "mutable", "extern", "volatile", "register", "signed", "unsigned",
		"short", "long", "constexpr", "decltype", "noexcept"},
	"ruby": {"def", "class", "module", "end", "if", "elsif", "else", "unless", "while", "until",
		"for", "in", "do", "case", "when", "then", "break", "next", "redo", "retry", "return",
		"yield", "super", "self", "nil", "true", "false", "and", "or", "not", "begin", "rescue",
		"ensure", "raise", "attr_reader", "attr_writer", "attr_accessor", "require", "include",
		"extend", "alias", "defined?", "lambda", "proc"},
	"php": {"function", "class", "interface", "trait", "namespace", "use", "extends", "implements",
		"public", "private", "protected", "static", "final", "abstract", "const", "var", "new",
		"if", "else", "elseif", "endif", "switch", "case", "break", "continue", "default",
		"while", "endwhile", "do", "for", "endfor", "foreach", "endforeach", "as", "return",
		"try", "catch", "finally", "throw", "echo", "print", "isset", "empty", "unset",
		"array", "list", "true", "false", "null", "require", "include", "require_once",
		"include_once", "global", "clone", "instanceof", "yield", "from"},
	"kotlin": {"fun", "val", "var", "class", "object", "interface", "data", "sealed", "enum",
		"abstract", "open", "private", "protected", "public", "internal", "override",
		"if", "else", "when", "for", "while", "do", "break", "continue", "return",
		"try", "catch", "finally", "throw", "import", "package", "as", "in", "is",
		"null", "true", "false", "this", "super", "companion", "init", "constructor",
		"by", "where", "suspend", "inline", "noinline", "crossinline", "reified",
		"lateinit", "inner", "const", "operator", "infix", "tailrec", "vararg"},
	"perl": {"sub", "my", "our", "local", "use", "require", "package", "if", "elsif", "else",
		"unless", "while", "until", "for", "foreach", "do", "next", "last", "redo",
		"return", "goto", "eval", "die", "warn", "undef", "defined", "exists", "delete",
		"shift", "unshift", "push", "pop", "splice", "keys", "values", "each", "map",
		"grep", "sort", "reverse", "chomp", "chop", "split", "join", "print", "printf",
		"say", "open", "close", "read", "write", "BEGIN", "END", "true", "false"},
	"scala": {"def", "val", "var", "class", "object", "trait", "extends", "with", "case",
		"sealed", "abstract", "private", "protected", "override", "final", "lazy",
		"if", "else", "match", "for", "while", "do", "yield", "return", "try", "catch",
		"finally", "throw", "import", "package", "type", "new", "this", "super",
		"true", "false", "null", "None", "Some", "Option", "Either", "Left", "Right"},
	"haskell": {"module", "where", "import", "data", "type", "newtype", "class", "instance",
		"let", "in", "if", "then", "else", "case", "of", "do", "return", "deriving",
		"infixl", "infixr", "infix", "qualified", "as", "hiding", "forall", "foreign",
		"True", "False", "Nothing", "Just", "Maybe", "Either", "Left", "Right"},
}

// aliases maps alternate spellings to canonical keys.
var aliases = map[string]string{
	"js":         "javascript",
	"ts":         "javascript",
	"typescript": "javascript",
	"py":         "python",
	"sh":         "bash",
	"shell":      "bash",
	"zsh":        "bash",
	"yml":        "yaml",
	"c++":        "cpp",
	"cc":         "cpp",
	"cxx":        "cpp",
	"htm":        "html",
	"rb":         "ruby",
	"pl":         "perl",
	"pm":         "perl",
	"kt":         "kotlin",
	"kts":        "kotlin",
	"sc":         "scala",
	"hs":         "haskell",
	"lhs":        "haskell",
}

// keywordSets is built once at init and only read afterwards.
var keywordSets = func() map[string]map[string]struct{} {
	sets := make(map[string]map[string]struct{}, len(keywordLists))
	for lang, words := range keywordLists {
		set := make(map[string]struct{}, len(words))
		for _, w := range words {
			set[w] = struct{}{}
		}
		sets[lang] = set
	}
	return sets
}()

// Resolve maps a fence annotation to its canonical language key. Matching is
// case-insensitive and alias-aware. It reports false when no keyword set is
// registered for the tag.
func Resolve(lang string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(lang))
	if canonical, ok := aliases[key]; ok {
		key = canonical
	}
	if _, ok := keywordSets[key]; !ok {
		return "", false
	}
	return key, true
}

// IsKeyword reports whether word is a keyword of the canonical language key.
func IsKeyword(lang, word string) bool {
	_, ok := keywordSets[lang][word]
	return ok
}

// Languages returns the canonical language keys, sorted.
func Languages() []string {
	out := make([]string, 0, len(keywordSets))
	for k := range keywordSets {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Aliases returns a copy of the alias table.
func Aliases() map[string]string {
	out := make(map[string]string, len(aliases))
	for k, v := range aliases {
		out[k] = v
	}
	return out
}
