package structures

import "net/http"

type CliFlags struct {
	ConfigPath string
	DebugMode  bool
	RunOnce    string
}

type Route struct {
	Url     string
	Methods []string
	Handler http.Handler
}
