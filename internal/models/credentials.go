package models

// Credentials identify and authenticate against one upstream media server.
type Credentials struct {
	ServerAddress string `json:"serverAddress"` // Host, host:port or full URL
	AuthToken     string `json:"authToken"`
}

// Complete reports whether both the address and the token are present.
func (c Credentials) Complete() bool {
	return c.ServerAddress != "" && c.AuthToken != ""
}

// ServerIdentity is what the upstream root document says about the server.
type ServerIdentity struct {
	MachineIdentifier string `json:"machineIdentifier"`
	FriendlyName      string `json:"friendlyName,omitempty"`
	Version           string `json:"version,omitempty"`
}
