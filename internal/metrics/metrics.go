// Package metrics holds the prometheus collectors of every bridge component.
package metrics

const namespace = "runtime_bridge"

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func orUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
