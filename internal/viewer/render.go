package viewer

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

// Token is a run of text sharing one chroma CSS class.
type Token struct {
	Class string
	Text  string
}

// Line is one rendered source line; Number starts at 1.
type Line struct {
	Number int
	Tokens []Token
}

// chroma lexer names for languages whose name is not a chroma alias
var lexerAliases = map[string]string{
	"jsx":  "react",
	"tsx":  "typescript",
	"text": "plaintext",
	"mdx":  "markdown",
	"git":  "plaintext",
}

func lexerFor(language string) chroma.Lexer {
	name := language
	if alias, ok := lexerAliases[language]; ok {
		name = alias
	}
	lexer := lexers.Get(name)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}

// Render tokenizes content into lines. Surrounding whitespace is trimmed
// first; tokenizer failures degrade to unstyled lines.
func Render(content, language string) []Line {
	content = strings.TrimSpace(content)
	if content == "" {
		return []Line{{Number: 1}}
	}

	iterator, err := lexerFor(language).Tokenise(nil, content)
	if err != nil {
		return plainLines(content)
	}

	split := chroma.SplitTokensIntoLines(iterator.Tokens())
	out := make([]Line, 0, len(split))
	for i, tokens := range split {
		line := Line{Number: i + 1}
		for _, token := range tokens {
			text := strings.TrimRight(token.Value, "\n")
			if text == "" {
				continue
			}
			line.Tokens = append(line.Tokens, Token{Class: classFor(token.Type), Text: text})
		}
		out = append(out, line)
	}

	// lexers that force a trailing newline leave an empty final line
	if want := strings.Count(content, "\n") + 1; len(out) > want {
		out = out[:want]
	}
	return out
}

func plainLines(content string) []Line {
	raw := strings.Split(content, "\n")
	out := make([]Line, len(raw))
	for i, text := range raw {
		out[i] = Line{Number: i + 1}
		if text != "" {
			out[i].Tokens = []Token{{Text: text}}
		}
	}
	return out
}

func classFor(tokenType chroma.TokenType) string {
	if class, ok := chroma.StandardTypes[tokenType]; ok {
		return class
	}
	return chroma.StandardTypes[tokenType.Category()]
}

// Text joins a line's tokens back into source text.
func (l Line) Text() string {
	var b strings.Builder
	for _, token := range l.Tokens {
		b.WriteString(token.Text)
	}
	return b.String()
}
