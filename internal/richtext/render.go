package richtext

import (
	"html/template"
)

// Render parses stored markup and returns display-ready HTML. Output is
// always regenerated from the parsed document, never echoed from input.
func Render(markup string) (template.HTML, error) {
	doc, err := Parse(markup)
	if err != nil {
		return "", err
	}
	return template.HTML(Serialize(doc)), nil
}
