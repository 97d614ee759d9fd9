package mail

import (
	"encoding/json"
	"strings"

	"github.com/gamertech/tradein-backend/internal/entity"
)

// FormatSelections renders the stored selections blob for a human reading
// the follow-up email. Selections are opaque JSON on the lead: usually the
// parts array, sometimes a whole PC-spec object, sometimes absent.
func FormatSelections(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "N/A"
	}

	var parts []map[string]any
	if err := json.Unmarshal(raw, &parts); err == nil {
		var lines []string
		for _, part := range parts {
			segments := []string{
				partField(part, "Category", "category"),
				partField(part, "Subgroup", "subgroup"),
				partField(part, "Brand", "brand"),
				partField(part, "Item", "item"),
			}
			var kept []string
			for _, seg := range segments {
				if seg != "" {
					kept = append(kept, seg)
				}
			}
			if len(kept) > 0 {
				lines = append(lines, strings.Join(kept, " / "))
			}
		}
		if len(lines) > 0 {
			return strings.Join(lines, "\n")
		}
		return "N/A"
	}

	// Not list-shaped: pretty-print objects, clean up plain strings.
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return entity.CleanField(string(raw))
	}
	switch v := value.(type) {
	case string:
		return entity.CleanField(v)
	case nil:
		return "N/A"
	default:
		pretty, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return entity.CleanField(string(raw))
		}
		return string(pretty)
	}
}

func partField(part map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := part[key]; ok {
			if s, ok := v.(string); ok {
				return entity.CleanField(s)
			}
		}
	}
	return ""
}
