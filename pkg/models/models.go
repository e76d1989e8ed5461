package models

const (
	BayenPro     = "bayen-pro"
	BayenLite    = "bayen-lite"
	DefaultModel = BayenPro
)

// Valid reports whether name is a model the chat endpoint accepts.
func Valid(name string) bool {
	switch name {
	case BayenPro, BayenLite:
		return true
	}
	return false
}
