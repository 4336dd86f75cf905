package validate

import (
	"context"
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"

	"pipewatch/internal/entity"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
)

const (
	codeDuplicateName    = "duplicate_name"
	codeUnknownFamily    = "unknown_family"
	codeOrphanedInstance = "orphaned_instance"
	codeEndpointVersion  = "endpoint_version"
)

type Issue struct {
	Severity Severity
	Code     string
	Message  string
	Kind     entity.Kind
	Entity   string
}

type Report struct {
	Issues []Issue
}

type Options struct {
	// EndpointConstraint is a semver constraint every context record's
	// endpointVersion must satisfy. Empty skips the check.
	EndpointConstraint string
}

func Run(ctx context.Context, source Source, opts Options) (*Report, error) {
	if source == nil {
		return nil, fmt.Errorf("source is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var constraint *semver.Constraints
	if opts.EndpointConstraint != "" {
		c, err := semver.NewConstraint(opts.EndpointConstraint)
		if err != nil {
			return nil, fmt.Errorf("parse endpoint constraint: %w", err)
		}
		constraint = c
	}

	plugins := source.ListPlugins()
	instances := source.ListInstances()

	issues := make([]Issue, 0)
	issues = append(issues, duplicateNames(entity.KindPlugin, pluginNames(plugins))...)
	issues = append(issues, duplicateNames(entity.KindInstance, instanceNames(instances))...)
	issues = append(issues, unknownFamilies(plugins, instances)...)
	issues = append(issues, orphanedInstances(plugins, instances)...)

	if constraint != nil {
		issues = append(issues, endpointVersions(source, constraint)...)
	}

	return &Report{Issues: issues}, nil
}

func duplicateNames(kind entity.Kind, names []string) []Issue {
	counts := make(map[string]int, len(names))
	var order []string
	for _, name := range names {
		if counts[name] == 0 {
			order = append(order, name)
		}
		counts[name]++
	}

	var issues []Issue
	for _, name := range order {
		if counts[name] < 2 {
			continue
		}
		issues = append(issues, Issue{
			Severity: SeverityError,
			Code:     codeDuplicateName,
			Message:  fmt.Sprintf("name used by %d entities; lookups resolve to the first", counts[name]),
			Kind:     kind,
			Entity:   name,
		})
	}
	return issues
}

func unknownFamilies(plugins []*entity.Plugin, instances []*entity.Instance) []Issue {
	present := make(map[string]bool, len(instances))
	for _, inst := range instances {
		present[inst.Family] = true
	}

	var issues []Issue
	for _, plugin := range plugins {
		var missing []string
		for _, family := range plugin.Families {
			if family == "*" || present[family] {
				continue
			}
			missing = append(missing, family)
		}
		if len(missing) == 0 {
			continue
		}
		sort.Strings(missing)
		issues = append(issues, Issue{
			Severity: SeverityWarn,
			Code:     codeUnknownFamily,
			Message:  fmt.Sprintf("no instance of families %v", missing),
			Kind:     entity.KindPlugin,
			Entity:   plugin.Name,
		})
	}
	return issues
}

func orphanedInstances(plugins []*entity.Plugin, instances []*entity.Instance) []Issue {
	var issues []Issue
	for _, inst := range instances {
		if acceptedByAny(plugins, inst.Family) {
			continue
		}
		issues = append(issues, Issue{
			Severity: SeverityWarn,
			Code:     codeOrphanedInstance,
			Message:  fmt.Sprintf("no plugin processes family %q", inst.Family),
			Kind:     entity.KindInstance,
			Entity:   inst.Name,
		})
	}
	return issues
}

func endpointVersions(source Source, constraint *semver.Constraints) []Issue {
	var issues []Issue
	for i, record := range source.ListRecords() {
		if record.String("type") != "context" {
			continue
		}
		raw, ok := record["endpointVersion"]
		if !ok || raw == nil {
			continue
		}
		entityName := fmt.Sprintf("record %d", i)
		value := fmt.Sprint(raw)

		version, err := semver.NewVersion(value)
		if err != nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeEndpointVersion,
				Message:  fmt.Sprintf("invalid endpoint version %q: %v", value, err),
				Entity:   entityName,
			})
			continue
		}
		if !constraint.Check(version) {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeEndpointVersion,
				Message:  fmt.Sprintf("endpoint version %s does not satisfy %s", version, constraint),
				Entity:   entityName,
			})
		}
	}
	return issues
}

func acceptedByAny(plugins []*entity.Plugin, family string) bool {
	for _, plugin := range plugins {
		if plugin.AcceptsFamily(family) {
			return true
		}
	}
	return false
}

func pluginNames(plugins []*entity.Plugin) []string {
	names := make([]string, 0, len(plugins))
	for _, p := range plugins {
		names = append(names, p.Name)
	}
	return names
}

func instanceNames(instances []*entity.Instance) []string {
	names := make([]string, 0, len(instances))
	for _, inst := range instances {
		names = append(names, inst.Name)
	}
	return names
}
