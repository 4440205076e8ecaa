package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"edgeproxy/domain"
)

// Env variable names controlling the listener and the built-in route table.
const (
	envPort        = "PROXY_PORT"
	envHTTPBackend = "PROXY_HTTP_BACKEND"
	envGRPCBackend = "PROXY_GRPC_BACKENDS"
	envEnableTLS   = "PROXY_ENABLE_TLS"
	envTLSCert     = "PROXY_TLS_CERT"
	envTLSKey      = "PROXY_TLS_KEY"
	envConfigFile  = "PROXY_CONFIG_FILE"
)

const (
	defaultPort        = 5000
	defaultHTTPBackend = "http://localhost:7001"
)

var defaultGRPCBackends = []string{"http://localhost:7002", "http://localhost:7003"}

// Config is everything main needs to start listening: the listening port,
// whether to terminate TLS (and, if so, the cert/key pair), and the
// assembled routing table.
type Config struct {
	Port        int
	EnableTLS   bool
	TLSCertFile string
	TLSKeyFile  string
	Proxy       domain.ProxyConfig
}

// yamlFile is the optional PROXY_CONFIG_FILE schema: a full replacement for
// the built-in route/cluster table.
type yamlFile struct {
	Routes   []yamlRoute            `yaml:"routes"`
	Clusters map[string]yamlCluster `yaml:"clusters"`
}

type yamlRoute struct {
	Prefix      string `yaml:"prefix"`
	Cluster     string `yaml:"cluster"`
	Kind        string `yaml:"kind"`
	StripPrefix bool   `yaml:"strip_prefix"`
}

type yamlCluster struct {
	Destinations []string `yaml:"destinations"`
}

// LoadConfig builds Config from the environment, optionally replacing the
// built-in route table with PROXY_CONFIG_FILE's contents. Values come from
// os.Getenv plus strconv, trimmed and validated with descriptive
// fmt.Errorf messages.
func LoadConfig() (*Config, error) {
	port, err := loadPort()
	if err != nil {
		return nil, err
	}
	enableTLS, err := loadBool(envEnableTLS, true)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:      port,
		EnableTLS: enableTLS,
	}
	if enableTLS {
		cfg.TLSCertFile = strings.TrimSpace(os.Getenv(envTLSCert))
		cfg.TLSKeyFile = strings.TrimSpace(os.Getenv(envTLSKey))
		if cfg.TLSCertFile == "" || cfg.TLSKeyFile == "" {
			return nil, fmt.Errorf("%s and %s are required when %s=true", envTLSCert, envTLSKey, envEnableTLS)
		}
	}

	if path := strings.TrimSpace(os.Getenv(envConfigFile)); path != "" {
		proxy, loadErr := loadProxyConfigFromFile(path)
		if loadErr != nil {
			return nil, fmt.Errorf("load %s: %w", envConfigFile, loadErr)
		}
		cfg.Proxy = proxy
		return cfg, nil
	}

	proxy, err := builtinProxyConfig()
	if err != nil {
		return nil, err
	}
	cfg.Proxy = proxy
	return cfg, nil
}

// builtinProxyConfig assembles the default route/cluster table:
// /api/ (HTTP, no strip) to a single PROXY_HTTP_BACKEND
// destination and /grpc/ (gRPC, strip prefix) to the ordered
// PROXY_GRPC_BACKENDS destinations. The two local health paths are not in
// this table: the dispatcher serves them directly, with no cluster.
func builtinProxyConfig() (domain.ProxyConfig, error) {
	httpBackend := strings.TrimSpace(os.Getenv(envHTTPBackend))
	if httpBackend == "" {
		httpBackend = defaultHTTPBackend
	}
	apiDest, err := domain.NewDestination("api-0", httpBackend)
	if err != nil {
		return domain.ProxyConfig{}, fmt.Errorf("%s: %w", envHTTPBackend, err)
	}

	grpcBackendsRaw := strings.TrimSpace(os.Getenv(envGRPCBackend))
	var grpcURLs []string
	if grpcBackendsRaw == "" {
		grpcURLs = defaultGRPCBackends
	} else {
		for _, part := range strings.Split(grpcBackendsRaw, ";") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				grpcURLs = append(grpcURLs, trimmed)
			}
		}
	}
	grpcDests := make([]domain.Destination, 0, len(grpcURLs))
	for i, raw := range grpcURLs {
		dest, destErr := domain.NewDestination(fmt.Sprintf("grpc-%d", i), raw)
		if destErr != nil {
			return domain.ProxyConfig{}, fmt.Errorf("%s[%d]: %w", envGRPCBackend, i, destErr)
		}
		grpcDests = append(grpcDests, dest)
	}

	routes := []domain.Route{
		domain.NewRoute("/api/", "api", domain.RouteHTTP, false),
		domain.NewRoute("/grpc/", "grpc", domain.RouteGRPC, true),
	}
	clusters := []domain.Cluster{
		{ID: "api", Destinations: []domain.Destination{apiDest}},
		{ID: "grpc", Destinations: grpcDests},
	}
	return domain.NewProxyConfig(routes, clusters)
}

// loadProxyConfigFromFile replaces the built-in table with an operator-
// supplied one. Route order in the YAML file is preserved verbatim, since
// route order is semantically significant.
func loadProxyConfigFromFile(path string) (domain.ProxyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.ProxyConfig{}, err
	}
	var raw yamlFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return domain.ProxyConfig{}, err
	}

	routes := make([]domain.Route, 0, len(raw.Routes))
	for _, r := range raw.Routes {
		kind := domain.RouteHTTP
		if strings.EqualFold(strings.TrimSpace(r.Kind), "grpc") {
			kind = domain.RouteGRPC
		}
		routes = append(routes, domain.NewRoute(r.Prefix, domain.ClusterID(r.Cluster), kind, r.StripPrefix))
	}

	clusters := make([]domain.Cluster, 0, len(raw.Clusters))
	for name, c := range raw.Clusters {
		dests := make([]domain.Destination, 0, len(c.Destinations))
		for i, rawURL := range c.Destinations {
			dest, err := domain.NewDestination(fmt.Sprintf("%s-%d", name, i), rawURL)
			if err != nil {
				return domain.ProxyConfig{}, fmt.Errorf("cluster %s: %w", name, err)
			}
			dests = append(dests, dest)
		}
		clusters = append(clusters, domain.Cluster{ID: domain.ClusterID(name), Destinations: dests})
	}

	return domain.NewProxyConfig(routes, clusters)
}

func loadPort() (int, error) {
	raw := strings.TrimSpace(os.Getenv(envPort))
	if raw == "" {
		return defaultPort, nil
	}
	port, err := strconv.Atoi(raw)
	if err != nil || port <= 0 || port > 65535 {
		return 0, fmt.Errorf("%s must be 1-65535, got %q", envPort, raw)
	}
	return port, nil
}

func loadBool(name string, def bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", name, raw)
	}
	return v, nil
}
