package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/opsrange/restartdiag/internal/logic/check"
)

const (
	defaultStorageBoundThreshold = 60 * time.Second
	defaultLateThreshold         = 5 * time.Minute
)

// ServingGVR selects the custom resource group/version/resource sampled by
// serving checks.
type ServingGVR struct {
	Group    string `yaml:"group"`
	Version  string `yaml:"version"`
	Resource string `yaml:"resource"`
}

// Probe is one in-cluster HTTP health endpoint captured in snapshots.
type Probe struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// ChecksConfig declares the component-check set, the serving resource type,
// snapshot health probes and rule thresholds for one deployment.
type ChecksConfig struct {
	Checks  []check.ComponentCheck `yaml:"checks"`
	Serving ServingGVR             `yaml:"serving"`
	Probes  []Probe                `yaml:"probes"`
	Rules   RulesConfig            `yaml:"rules"`
}

// RulesConfig carries analyzer thresholds from the checks file. Zero values
// fall back to env/default thresholds.
type RulesConfig struct {
	StorageBoundThresholdSeconds int `yaml:"storageBoundThresholdSeconds"`
	LateThresholdSeconds         int `yaml:"lateThresholdSeconds"`
}

// LoadChecks reads the checks file, or returns the compiled-in default set
// for the given platform namespace when path is empty.
func LoadChecks(path, namespace string) (*ChecksConfig, error) {
	cfg := defaultChecks(namespace)

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: read checks file: %w", ErrInvalidConfig, err)
		}

		cfg = &ChecksConfig{}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("%w: parse checks file: %w", ErrInvalidConfig, err)
		}
	}

	if cfg.Serving.Resource == "" {
		cfg.Serving = defaultServingGVR()
	}

	if err := validateChecks(cfg.Checks); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateChecks rejects duplicate or empty IDs, dangling dependsOn
// references and cyclic dependency declarations before any artifact is
// written.
func validateChecks(checks []check.ComponentCheck) error {
	byID := make(map[string]*check.ComponentCheck, len(checks))

	for i := range checks {
		c := &checks[i]
		if c.ID == "" {
			return fmt.Errorf("%w: check %d has no id", ErrInvalidConfig, i)
		}

		if _, dup := byID[c.ID]; dup {
			return fmt.Errorf("%w: duplicate check id %q", ErrInvalidConfig, c.ID)
		}

		byID[c.ID] = c
	}

	for i := range checks {
		for _, dep := range checks[i].DependsOn {
			if _, ok := byID[dep]; !ok {
				return fmt.Errorf(
					"%w: check %q depends on unknown check %q",
					ErrInvalidConfig, checks[i].ID, dep,
				)
			}
		}
	}

	// Colored DFS over dependsOn edges; a back edge is a cycle.
	const (
		white = 0
		grey  = 1
		black = 2
	)

	color := make(map[string]int, len(checks))

	var visit func(id string) error
	visit = func(id string) error {
		color[id] = grey

		for _, dep := range byID[id].DependsOn {
			switch color[dep] {
			case grey:
				return fmt.Errorf(
					"%w: cyclic dependency declaration involving %q and %q",
					ErrCyclicDependency, id, dep,
				)
			case white:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		color[id] = black

		return nil
	}

	for id := range byID {
		if color[id] == white {
			if err := visit(id); err != nil {
				return err
			}
		}
	}

	return nil
}

func defaultServingGVR() ServingGVR {
	return ServingGVR{
		Group:    "serving.kserve.io",
		Version:  "v1beta1",
		Resource: "inferenceservices",
	}
}

// defaultChecks is the compiled-in check set for the ML platform layout this
// tool grew up on: object storage and the model registry come up first, the
// coordination engine and model serving depend on them.
func defaultChecks(ns string) *ChecksConfig {
	return &ChecksConfig{
		Serving: defaultServingGVR(),
		Probes: []Probe{
			{
				Name: "coordination-engine-health",
				URL:  fmt.Sprintf("http://coordination-engine.%s.svc.cluster.local:8080/health", ns),
			},
		},
		Checks: []check.ComponentCheck{
			{
				ID:          "platform-namespace",
				DisplayName: "Platform namespace",
				Kind:        check.KindNamespace,
				Namespace:   ns,
				Critical:    true,
			},
			{
				ID:          "object-storage",
				DisplayName: "Object storage (MinIO)",
				Kind:        check.KindPodReady,
				Namespace:   ns,
				Selector:    "app=minio",
				Critical:    true,
			},
			{
				ID:          "model-storage-pvc",
				DisplayName: "Model storage PVC",
				Kind:        check.KindPVC,
				Namespace:   ns,
				Name:        "model-storage",
				Critical:    true,
			},
			{
				ID:          "model-registry",
				DisplayName: "Model registry",
				Kind:        check.KindPodReady,
				Namespace:   ns,
				Selector:    "app=model-registry",
				DependsOn:   []string{"model-storage-pvc"},
			},
			{
				ID:          "coordination-engine",
				DisplayName: "Coordination engine",
				Kind:        check.KindPodReady,
				Namespace:   ns,
				Selector:    "app=coordination-engine",
				DependsOn:   []string{"object-storage", "model-registry"},
				Critical:    true,
			},
			{
				ID:          "inference-services",
				DisplayName: "Model serving",
				Kind:        check.KindServing,
				Namespace:   ns,
				DependsOn:   []string{"model-storage-pvc", "coordination-engine"},
			},
			{
				ID:          "platform-setup-job",
				DisplayName: "Platform setup job",
				Kind:        check.KindJob,
				Namespace:   ns,
				Name:        "platform-setup",
			},
		},
	}
}
