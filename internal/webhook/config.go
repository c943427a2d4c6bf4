package webhook

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimeoutSeconds = 10
	defaultMaxRetries     = 3
)

// endpointsFile is the on-disk shape of the webhook config:
//
//	endpoints:
//	  - name: pdf-renderer
//	    url: https://renderer.internal/hooks/rules
//	    secret: whsec_...
//	    events: [rule.created, rule.updated, rule.deleted]
//	    environments: [prod]
type endpointsFile struct {
	Endpoints []Endpoint `yaml:"endpoints"`
}

// UnmarshalYAML seeds the per-endpoint defaults before decoding, so an
// omitted timeoutSeconds or maxRetries gets the default while an explicit
// "maxRetries: 0" still means a single delivery attempt.
func (e *Endpoint) UnmarshalYAML(value *yaml.Node) error {
	type endpointAlias Endpoint
	decoded := endpointAlias{
		TimeoutSeconds: defaultTimeoutSeconds,
		MaxRetries:     defaultMaxRetries,
	}
	if err := value.Decode(&decoded); err != nil {
		return err
	}
	*e = Endpoint(decoded)
	return nil
}

// LoadEndpoints reads webhook endpoints from a YAML config file. A missing
// path is not an error: it means no webhooks are configured.
func LoadEndpoints(path string) ([]Endpoint, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read webhook config: %w", err)
	}

	var file endpointsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse webhook config: %w", err)
	}

	for i := range file.Endpoints {
		ep := &file.Endpoints[i]
		if ep.Name == "" || ep.URL == "" {
			return nil, fmt.Errorf("webhook endpoint %d: name and url are required", i)
		}
		if len(ep.Events) == 0 {
			return nil, fmt.Errorf("webhook endpoint %q: at least one event is required", ep.Name)
		}
		if ep.TimeoutSeconds <= 0 {
			ep.TimeoutSeconds = defaultTimeoutSeconds
		}
		if ep.MaxRetries < 0 {
			ep.MaxRetries = 0
		}
	}
	return file.Endpoints, nil
}
