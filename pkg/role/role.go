package role

const (
	System    = "system"
	User      = "user"
	Assistant = "assistant"
)

// Valid reports whether r is one of the roles the chat endpoint recognizes.
func Valid(r string) bool {
	switch r {
	case System, User, Assistant:
		return true
	}
	return false
}
