package ollama

import (
	"fmt"
	"strings"

	"github.com/kirillkom/commerce-reconciler/internal/core/domain"
)

func buildMappingPrompt(entity domain.EntityType, columns, targets []string) string {
	return fmt.Sprintf(`You map source spreadsheet columns onto a canonical %s schema.
Return a strict JSON object whose keys are source column names and whose values are canonical field names.
Use only canonical field names from the list. Omit columns you cannot map. No markdown, no extra keys.

Source columns:
%s

Canonical fields:
%s
`, entity, strings.Join(columns, ", "), strings.Join(targets, ", "))
}
