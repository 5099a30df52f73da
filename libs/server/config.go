package server

type HttpServerConfig struct {
	Port       int    `json:"port" toml:"port"`
	Address    string `json:"address" toml:"address"`
	Path       string `json:"path" toml:"path"`
	Cors       bool   `json:"cors" toml:"cors"`
	RequestLog bool   `json:"request_log" toml:"request_log"`
}

type WebSocketConfig struct {
	ReadBufferSize   int      `json:"read_buffer_size" toml:"read_buffer_size"`
	WriteBufferSize  int      `json:"write_buffer_size" toml:"write_buffer_size"`
	HandshakeTimeout int      `json:"handshake_timeout" toml:"handshake_timeout"` // seconds
	AllowedOrigins   []string `json:"allowed_origins" toml:"allowed_origins"`     // empty allows all
}
