package interfaces

import "edgeproxy/domain"

// ConfigProvider yields the active configuration snapshot. Implemented by a
// static, env/YAML-assembled provider with no reload support; named as a
// seam so Dispatcher never reads the environment or a file directly.
//
//go:generate moq -stub -out mock/config_provider.go -pkg mock . ConfigProvider
type ConfigProvider interface {
	// Current returns the active ProxyConfig snapshot. Safe for concurrent
	// use by any number of request handlers; the returned value is never
	// mutated by the provider after construction.
	Current() domain.ProxyConfig
}
