package providers

import "strings"

type ProviderRef struct {
	Raw      string
	Name     string
	KeyAlias string
}

// ParseProviderRef reads "name" or "name:alias".
func ParseProviderRef(raw string) ProviderRef {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ProviderRef{Raw: "mock", Name: "mock"}
	}
	ref := ProviderRef{Raw: raw, Name: raw}
	if strings.Contains(raw, ":") {
		x := strings.SplitN(raw, ":", 2)
		ref.Name = strings.ToLower(strings.TrimSpace(x[0]))
		ref.KeyAlias = strings.TrimSpace(x[1])
	}
	return ref
}

// ParseModelList splits "a|b|c" (commas accepted too) keeping order and
// dropping blanks and duplicates.
func ParseModelList(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == '|' || r == ',' })
	out := make([]string, 0, len(parts))
	seen := map[string]struct{}{}
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// OrderModels moves preferred to the front; the rest keep their static order.
// A preferred model missing from the list is still tried first.
func OrderModels(models []string, preferred string) []string {
	preferred = strings.TrimSpace(preferred)
	out := make([]string, 0, len(models)+1)
	if preferred != "" {
		out = append(out, preferred)
	}
	for _, m := range models {
		if m == preferred {
			continue
		}
		out = append(out, m)
	}
	return out
}
