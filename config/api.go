package config

// APIConfig configures the HTTP state and control API.
type APIConfig struct {
	// Addr is the listen address; empty disables the API.
	Addr string `json:"addr"`
	// Token, when set, is required as a bearer token on /api/control.
	Token string `json:"token"`
}
