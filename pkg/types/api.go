package types

// EnvironmentsResponse wraps the list returned by GET /environments.
type EnvironmentsResponse struct {
	// Loaded environments in load order.
	Environments []Environment `json:"environments"`
	// Name of the selected environment.
	// example: Stage
	Current string `json:"current" example:"Stage"`
}

// UseRequest is the body of PUT /environments/current.
type UseRequest struct {
	// Name of the environment to select.
	// example: Production
	Name string `json:"name" example:"Production"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}
