package types

// Environment is a deployment target as exposed over the admin API.
// The API key is never serialized.
type Environment struct {
	// Unique environment name.
	// example: Stage
	Name string `json:"name" example:"Stage"`
	// Backend domain the app talks to in this environment.
	// example: stage.api.example.com
	Domain string `json:"domain" example:"stage.api.example.com"`
}
