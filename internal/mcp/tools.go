package mcp

import (
	"context"
	"fmt"
	"strings"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"pipewatch/internal/entity"
	"pipewatch/internal/registry"
	"pipewatch/internal/terminal"
)

type ListItemsInput struct {
	Kind string `json:"kind" jsonschema:"plugin or instance"`
}

type GetItemInput struct {
	Kind string `json:"kind" jsonschema:"plugin or instance"`
	Name string `json:"name" jsonschema:"item name"`
}

type NextPluginInput struct {
	Current int `json:"current" jsonschema:"index of the current plugin, -1 to start"`
}

type NextInstanceInput struct {
	Current  int      `json:"current" jsonschema:"index of the current instance, -1 to start"`
	Families []string `json:"families" jsonschema:"families the current plugin accepts"`
}

type SetFieldInput struct {
	Kind  string `json:"kind" jsonschema:"plugin or instance"`
	Name  string `json:"name" jsonschema:"item name"`
	Key   string `json:"key" jsonschema:"field to assign"`
	Value any    `json:"value" jsonschema:"new value"`
}

type ListRecordsInput struct {
	Level string `json:"level,omitempty" jsonschema:"only records with this levelname"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of records, newest last"`
}

type GetRolesInput struct {
	Kind string `json:"kind,omitempty" jsonschema:"plugin, instance or record; defaults to plugin"`
}

type ItemSummaryOutput struct {
	Index     int    `json:"index"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	IsToggled bool   `json:"is_toggled"`
	Succeeded bool   `json:"succeeded"`
	HasError  bool   `json:"has_error"`
}

type ListItemsOutput struct {
	Items []ItemSummaryOutput `json:"items"`
}

type ItemOutput struct {
	Index  int            `json:"index"`
	Name   string         `json:"name"`
	Kind   string         `json:"kind"`
	Fields map[string]any `json:"fields"`
}

type CursorOutput struct {
	Found bool        `json:"found"`
	Index int         `json:"index"`
	Item  *ItemOutput `json:"item,omitempty"`
}

type ListRecordsOutput struct {
	Records []map[string]any `json:"records"`
}

type RoleOutput struct {
	Role int    `json:"role"`
	Name string `json:"name"`
}

type GetRolesOutput struct {
	Roles []RoleOutput `json:"roles"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_items",
		Description: "List plugins or instances in pipeline order",
	}, s.handleListItems)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_item",
		Description: "Retrieve a plugin or instance and all of its fields",
	}, s.handleGetItem)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "next_plugin",
		Description: "Return the plugin after the given index",
	}, s.handleNextPlugin)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "next_instance",
		Description: "Return the next instance after the given index whose family is accepted",
	}, s.handleNextInstance)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "set_field",
		Description: "Assign a field on a plugin or instance",
	}, s.handleSetField)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_records",
		Description: "List terminal log records",
	}, s.handleListRecords)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_roles",
		Description: "Return the role number to field name table",
	}, s.handleGetRoles)
}

func (s *Server) handleListItems(ctx context.Context, req *sdk.CallToolRequest, input ListItemsInput) (*sdk.CallToolResult, ListItemsOutput, error) {
	kind, err := parseKind(input.Kind)
	if err != nil {
		return nil, ListItemsOutput{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var items []entity.Entity
	switch kind {
	case entity.KindPlugin:
		for _, p := range s.plugins.Items() {
			items = append(items, p)
		}
	case entity.KindInstance:
		for _, inst := range s.instances.Items() {
			items = append(items, inst)
		}
	}

	output := make([]ItemSummaryOutput, 0, len(items))
	for i, item := range items {
		output = append(output, itemSummaryOutput(i, item))
	}
	return nil, ListItemsOutput{Items: output}, nil
}

func (s *Server) handleGetItem(ctx context.Context, req *sdk.CallToolRequest, input GetItemInput) (*sdk.CallToolResult, ItemOutput, error) {
	kind, err := parseKind(input.Kind)
	if err != nil {
		return nil, ItemOutput{}, err
	}
	if input.Name == "" {
		return nil, ItemOutput{}, fmt.Errorf("name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, index, err := s.lookup(kind, input.Name)
	if err != nil {
		return nil, ItemOutput{}, err
	}
	return nil, itemOutput(index, item), nil
}

func (s *Server) handleNextPlugin(ctx context.Context, req *sdk.CallToolRequest, input NextPluginInput) (*sdk.CallToolResult, CursorOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plugin, index, ok := s.plugins.NextPlugin(input.Current)
	if !ok {
		return nil, CursorOutput{Index: -1}, nil
	}
	out := itemOutput(index, plugin)
	return nil, CursorOutput{Found: true, Index: index, Item: &out}, nil
}

func (s *Server) handleNextInstance(ctx context.Context, req *sdk.CallToolRequest, input NextInstanceInput) (*sdk.CallToolResult, CursorOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inst, index, ok := s.instances.NextInstance(input.Current, registry.Families(input.Families...))
	if !ok {
		return nil, CursorOutput{Index: -1}, nil
	}
	out := itemOutput(index, inst)
	return nil, CursorOutput{Found: true, Index: index, Item: &out}, nil
}

func (s *Server) handleSetField(ctx context.Context, req *sdk.CallToolRequest, input SetFieldInput) (*sdk.CallToolResult, ItemOutput, error) {
	kind, err := parseKind(input.Kind)
	if err != nil {
		return nil, ItemOutput{}, err
	}
	if input.Name == "" || input.Key == "" {
		return nil, ItemOutput{}, fmt.Errorf("name and key are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, index, err := s.lookup(kind, input.Name)
	if err != nil {
		return nil, ItemOutput{}, err
	}
	switch kind {
	case entity.KindPlugin:
		err = s.plugins.SetField(index, input.Key, input.Value)
	case entity.KindInstance:
		err = s.instances.SetField(index, input.Key, input.Value)
	}
	if err != nil {
		return nil, ItemOutput{}, err
	}
	return nil, itemOutput(index, item), nil
}

func (s *Server) handleListRecords(ctx context.Context, req *sdk.CallToolRequest, input ListRecordsInput) (*sdk.CallToolResult, ListRecordsOutput, error) {
	if s.terminal == nil {
		return nil, ListRecordsOutput{Records: []map[string]any{}}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	output := make([]map[string]any, 0)
	for _, record := range s.terminal.Records() {
		if input.Level != "" && !strings.EqualFold(record.String("levelname"), input.Level) {
			continue
		}
		output = append(output, recordOutput(record))
	}
	if input.Limit > 0 && len(output) > input.Limit {
		output = output[len(output)-input.Limit:]
	}
	return nil, ListRecordsOutput{Records: output}, nil
}

func (s *Server) handleGetRoles(ctx context.Context, req *sdk.CallToolRequest, input GetRolesInput) (*sdk.CallToolResult, GetRolesOutput, error) {
	var table *registry.RoleTable
	switch strings.ToLower(input.Kind) {
	case "", "plugin", "instance", "item":
		table = registry.EntityRoles()
	case "record", "log", "terminal":
		table = terminal.Roles()
	default:
		return nil, GetRolesOutput{}, fmt.Errorf("unknown kind %q", input.Kind)
	}

	names := table.Names()
	output := make([]RoleOutput, 0, len(names))
	for _, role := range table.Roles() {
		output = append(output, RoleOutput{Role: int(role), Name: names[role]})
	}
	return nil, GetRolesOutput{Roles: output}, nil
}

func (s *Server) lookup(kind entity.Kind, name string) (entity.Entity, int, error) {
	switch kind {
	case entity.KindPlugin:
		index, err := s.plugins.ItemIndexFromName(name)
		if err != nil {
			return nil, -1, err
		}
		item, _ := s.plugins.ItemFromIndex(index)
		return item, index, nil
	case entity.KindInstance:
		index, err := s.instances.ItemIndexFromName(name)
		if err != nil {
			return nil, -1, err
		}
		item, _ := s.instances.ItemFromIndex(index)
		return item, index, nil
	}
	return nil, -1, fmt.Errorf("%w: %s", entity.ErrUnknownKind, kind)
}

func parseKind(kind string) (entity.Kind, error) {
	switch strings.ToLower(kind) {
	case "plugin", "plugins":
		return entity.KindPlugin, nil
	case "instance", "instances":
		return entity.KindInstance, nil
	case "":
		return "", fmt.Errorf("kind is required")
	}
	return "", fmt.Errorf("%w: %s", entity.ErrUnknownKind, kind)
}

func itemSummaryOutput(index int, item entity.Entity) ItemSummaryOutput {
	out := ItemSummaryOutput{
		Index: index,
		Name:  item.EntityName(),
		Kind:  string(item.Kind()),
	}
	out.IsToggled, _ = fieldBool(item, "isToggled")
	out.Succeeded, _ = fieldBool(item, "succeeded")
	out.HasError, _ = fieldBool(item, "hasError")
	return out
}

func itemOutput(index int, item entity.Entity) ItemOutput {
	fields := make(map[string]any)
	for _, key := range item.Fields() {
		if value, ok := item.Field(key); ok {
			fields[key] = value
		}
	}
	fields[registry.KindField] = string(item.Kind())
	return ItemOutput{
		Index:  index,
		Name:   item.EntityName(),
		Kind:   string(item.Kind()),
		Fields: fields,
	}
}

func recordOutput(record terminal.Record) map[string]any {
	out := make(map[string]any, len(record))
	for key, value := range record {
		out[key] = value
	}
	return out
}

func fieldBool(item entity.Entity, key string) (bool, bool) {
	value, ok := item.Field(key)
	if !ok {
		return false, false
	}
	b, ok := value.(bool)
	return b, ok
}
