package devservice

// DefaultImage is the schema registry image started when none is configured.
const DefaultImage = "apicurio/apicurio-registry:3.1.4"

// DefaultServiceName labels shared dev-service containers so overlapping
// builds can discover and adopt them.
const DefaultServiceName = "schemaflow-registry"

const (
	// registryPort is the port the registry listens on inside the container.
	registryPort = 8080
	// apiBasePath is appended to the container base URL to form the registry
	// API endpoint.
	apiBasePath = "/apis/registry/v3"
)

// ServiceLabel is the container label key identifying schemaflow-managed
// dev-service containers.
const ServiceLabel = "schemaflow-dev-service"

// Snapshot is the immutable desired configuration of the backing service.
// Two value-equal snapshots describe the same service; any difference forces
// a full stop-then-start cycle.
type Snapshot struct {
	Enabled     bool
	Image       string
	FixedPort   int
	Shared      bool
	ServiceName string
	Env         map[string]string
}

// WithDefaults fills zero fields with the package defaults.
func (s Snapshot) WithDefaults() Snapshot {
	if s.Image == "" {
		s.Image = DefaultImage
	}
	if s.ServiceName == "" {
		s.ServiceName = DefaultServiceName
	}
	return s
}

// Equal reports value equality, including the environment map.
func (s Snapshot) Equal(other Snapshot) bool {
	if s.Enabled != other.Enabled ||
		s.Image != other.Image ||
		s.FixedPort != other.FixedPort ||
		s.Shared != other.Shared ||
		s.ServiceName != other.ServiceName {
		return false
	}
	if len(s.Env) != len(other.Env) {
		return false
	}
	for k, v := range s.Env {
		if ov, ok := other.Env[k]; !ok || ov != v {
			return false
		}
	}
	return true
}
