package main

import "edgeproxy/domain"

// staticConfigProvider implements interfaces.ConfigProvider over a single
// snapshot assembled once at startup and never replaced: no hot
// configuration reload.
type staticConfigProvider struct {
	snapshot domain.ProxyConfig
}

func newStaticConfigProvider(snapshot domain.ProxyConfig) *staticConfigProvider {
	return &staticConfigProvider{snapshot: snapshot}
}

func (p *staticConfigProvider) Current() domain.ProxyConfig {
	return p.snapshot
}
