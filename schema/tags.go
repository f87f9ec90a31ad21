package schema

import "strings"

// NormalizeTags canonicalizes raw tag values into an ordered list of
// lowercase, trimmed, non-empty tags with duplicates removed. Each raw
// value may itself be a comma-separated list, so both repeated query
// parameters and a single CSV string normalize the same way.
func NormalizeTags(raw []string) []string {
	tags := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))

	for _, value := range raw {
		for _, part := range strings.Split(value, ",") {
			tag := strings.ToLower(strings.TrimSpace(part))
			if tag == "" {
				continue
			}
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}

	return tags
}

// TagList decodes a JSON field that is either a list of strings or a
// single comma-separated string. The decoded value is always normalized.
type TagList []string

func (t *TagList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*t = nil

		return nil
	}

	if strings.HasPrefix(trimmed, "\"") {
		var csv string
		if err := unmarshalStrict(data, &csv); err != nil {
			return err
		}
		*t = NormalizeTags([]string{csv})

		return nil
	}

	var list []string
	if err := unmarshalStrict(data, &list); err != nil {
		return err
	}
	*t = NormalizeTags(list)

	return nil
}
