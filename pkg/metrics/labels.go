package metrics

const namespace = "cil"

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
