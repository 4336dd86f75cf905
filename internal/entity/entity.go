package entity

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

type Kind string

const (
	KindItem     Kind = "Item"
	KindInstance Kind = "Instance"
	KindPlugin   Kind = "Plugin"
)

// DocDisplayLength is the number of characters of a plugin doc string kept
// for display before the ellipsis.
const DocDisplayLength = 30

var (
	ErrUnknownField = errors.New("unknown field")
	ErrFieldType    = errors.New("invalid field value")
	ErrUnknownKind  = errors.New("unknown entity kind")
)

// Entity is a named record materialized from layered default schemas.
type Entity interface {
	EntityName() string
	Kind() Kind
	// Data returns the raw override mapping the entity was built from. It is
	// shared with the entity; callers must not modify it.
	Data() map[string]any
	Field(key string) (any, bool)
	SetField(key string, value any) error
	Fields() []string
}

func New(kind Kind, name string, data map[string]any) (Entity, error) {
	switch kind {
	case KindItem:
		return NewItem(name, data), nil
	case KindInstance:
		return NewInstance(name, data), nil
	case KindPlugin:
		return NewPlugin(name, data), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

type Item struct {
	Name            string
	IsSelected      bool
	IsProcessing    bool
	IsToggled       bool
	Optional        bool
	HasError        bool
	HasWarning      bool
	HasMessage      bool
	Succeeded       bool
	CurrentProgress float64
	Errors          []any
	Warnings        []any
	Messages        []any

	data map[string]any
}

func NewItem(name string, data map[string]any) *Item {
	item := &Item{}
	item.init(item, KindItem, name, data)
	return item
}

func (i *Item) init(self Entity, kind Kind, name string, data map[string]any) {
	if data == nil {
		data = make(map[string]any)
	}
	merge(self, data, SchemasFor(kind))
	i.Name = name
	i.data = data
}

func (i *Item) EntityName() string   { return i.Name }
func (i *Item) Kind() Kind           { return KindItem }
func (i *Item) Data() map[string]any { return i.data }
func (i *Item) String() string       { return i.Name }

func (i *Item) Fields() []string {
	return BaseSchema.Keys()
}

func (i *Item) Field(key string) (any, bool) {
	switch key {
	case "name":
		return i.Name, true
	case "isSelected":
		return i.IsSelected, true
	case "isProcessing":
		return i.IsProcessing, true
	case "isToggled":
		return i.IsToggled, true
	case "optional":
		return i.Optional, true
	case "hasError":
		return i.HasError, true
	case "hasWarning":
		return i.HasWarning, true
	case "hasMessage":
		return i.HasMessage, true
	case "succeeded":
		return i.Succeeded, true
	case "currentProgress":
		return i.CurrentProgress, true
	case "errors":
		return i.Errors, true
	case "warnings":
		return i.Warnings, true
	case "messages":
		return i.Messages, true
	}
	return nil, false
}

func (i *Item) SetField(key string, value any) error {
	switch key {
	case "name":
		return assignString(&i.Name, key, value)
	case "isSelected":
		return assignBool(&i.IsSelected, key, value)
	case "isProcessing":
		return assignBool(&i.IsProcessing, key, value)
	case "isToggled":
		return assignBool(&i.IsToggled, key, value)
	case "optional":
		return assignBool(&i.Optional, key, value)
	case "hasError":
		return assignBool(&i.HasError, key, value)
	case "hasWarning":
		return assignBool(&i.HasWarning, key, value)
	case "hasMessage":
		return assignBool(&i.HasMessage, key, value)
	case "succeeded":
		return assignBool(&i.Succeeded, key, value)
	case "currentProgress":
		return assignFloat(&i.CurrentProgress, key, value)
	case "errors":
		return assignList(&i.Errors, key, value)
	case "warnings":
		return assignList(&i.Warnings, key, value)
	case "messages":
		return assignList(&i.Messages, key, value)
	}
	return fmt.Errorf("%w: %s", ErrUnknownField, key)
}

// Instance is a unit of work, such as an asset, that plugins process.
type Instance struct {
	Item
	Family   string
	NiceName string
}

func NewInstance(name string, data map[string]any) *Instance {
	inst := &Instance{}
	inst.init(inst, KindInstance, name, data)
	return inst
}

func (i *Instance) Kind() Kind { return KindInstance }

func (i *Instance) Fields() []string {
	return UnionKeys(BaseSchema, InstanceSchema)
}

func (i *Instance) Field(key string) (any, bool) {
	switch key {
	case "family":
		return i.Family, true
	case "niceName":
		return i.NiceName, true
	}
	return i.Item.Field(key)
}

func (i *Instance) SetField(key string, value any) error {
	switch key {
	case "family":
		return assignString(&i.Family, key, value)
	case "niceName":
		return assignString(&i.NiceName, key, value)
	}
	return i.Item.SetField(key, value)
}

// Plugin is a processing step declaring the instance families it accepts.
type Plugin struct {
	Item
	Doc           string
	HasRepair     bool
	HasCompatible bool
	Families      []string
	Hosts         []string
	Type          string
}

func NewPlugin(name string, data map[string]any) *Plugin {
	p := &Plugin{}
	p.init(p, KindPlugin, name, data)
	p.Doc = truncateDoc(p.Doc)
	return p
}

func (p *Plugin) Kind() Kind { return KindPlugin }

func (p *Plugin) Fields() []string {
	return UnionKeys(BaseSchema, PluginSchema)
}

func (p *Plugin) Field(key string) (any, bool) {
	switch key {
	case "doc":
		return p.Doc, true
	case "hasRepair":
		return p.HasRepair, true
	case "hasCompatible":
		return p.HasCompatible, true
	case "families":
		return p.Families, true
	case "hosts":
		return p.Hosts, true
	case "type":
		return p.Type, true
	}
	return p.Item.Field(key)
}

func (p *Plugin) SetField(key string, value any) error {
	switch key {
	case "doc":
		if value == nil {
			p.Doc = ""
			return nil
		}
		return assignString(&p.Doc, key, value)
	case "hasRepair":
		return assignBool(&p.HasRepair, key, value)
	case "hasCompatible":
		return assignBool(&p.HasCompatible, key, value)
	case "families":
		return assignStrings(&p.Families, key, value)
	case "hosts":
		return assignStrings(&p.Hosts, key, value)
	case "type":
		return assignString(&p.Type, key, value)
	}
	return p.Item.SetField(key, value)
}

// AcceptsFamily reports whether the plugin declares family, either
// directly or through the "*" wildcard.
func (p *Plugin) AcceptsFamily(family string) bool {
	for _, f := range p.Families {
		if f == family || f == "*" {
			return true
		}
	}
	return false
}

func truncateDoc(doc string) string {
	if utf8.RuneCountInString(doc) <= DocDisplayLength {
		return doc
	}
	runes := []rune(doc)
	return string(runes[:DocDisplayLength]) + "..."
}
