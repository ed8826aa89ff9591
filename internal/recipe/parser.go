package recipe

import (
	"regexp"
	"strings"
)

var recordStartRe = regexp.MustCompile(`\d+\.\s*요리명:`)

// recordFields are the labeled fields of one recipe record, in the
// order the prompt asks for them.
var recordFields = []string{"재료:", "조리법:", "예상 조리시간:", "난이도:"}

// ParseRecipes splits model free text into recipe records. Records are
// delimited by the numbered "요리명:" marker; fields inside a record
// are delimited by their labels, scanned strictly in order so a label
// appearing inside a field value cannot derail the split.
func ParseRecipes(content string) []Recipe {
	blocks := recordStartRe.Split(content, -1)
	if len(blocks) < 2 {
		return nil
	}

	var recipes []Recipe
	for i, block := range blocks[1:] {
		fields := splitRecord(block, recordFields)
		recipe := Recipe{
			ID:           i + 1,
			Name:         fields[0],
			Ingredients:  fields[1],
			Instructions: fields[2],
			CookingTime:  fields[3],
			Difficulty:   fields[4],
		}
		if recipe.Name == "" {
			continue
		}
		recipes = append(recipes, recipe)
	}
	return recipes
}

// splitRecord cuts a record into len(labels)+1 values: the text before
// the first label, then the text after each label up to the next one.
func splitRecord(block string, labels []string) []string {
	values := make([]string, len(labels)+1)
	rest := block

	for i, label := range labels {
		idx := strings.Index(rest, label)
		if idx < 0 {
			values[i] = cleanFieldValue(rest)
			rest = ""
			continue
		}
		values[i] = cleanFieldValue(rest[:idx])
		rest = rest[idx+len(label):]
	}
	values[len(labels)] = cleanFieldValue(rest)

	return values
}

func cleanFieldValue(s string) string {
	return strings.Trim(strings.TrimSpace(s), "[]")
}
