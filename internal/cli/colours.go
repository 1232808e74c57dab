package cli

const (
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Blue   = "\033[34m"
	Cyan   = "\033[36m"
	Gray   = "\033[90m" // Bright black, often appears as gray

	ResetColor = "\033[0m"
)

var statusColors = map[string]string{
	// inquiries
	"pending":   Yellow,
	"reviewing": Cyan,
	"quoted":    Blue,
	"completed": Green,
	"rejected":  Red,
	// contacts
	"New":         Yellow,
	"In Progress": Cyan,
	"Resolved":    Green,
	"Closed":      Gray,
	// stock
	"In Stock":     Green,
	"Low Stock":    Yellow,
	"Out of Stock": Red,
}

// status colours a status label when writing to a terminal. Callers keep it in the last
// column so the escape codes can't upset table alignment.
func (a *App) status(label string) string {
	if !a.color {
		return label
	}
	if color, ok := statusColors[label]; ok {
		return color + label + ResetColor
	}
	return label
}
