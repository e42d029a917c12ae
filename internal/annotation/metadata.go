package annotation

import (
	"fmt"
)

// Frontmatter keys read from a document header.
const (
	keyEnabled        = "dataviewAnnotation"
	keyEnabledAlias   = "enabled"
	keyAnnotations    = "annotations"
	keyTriggerPhrase  = "triggerPhrase"
	keySeparator      = "separator"
	keyName           = "name"
	keyKind           = "type"
	keyKindAlias      = "kind"
	keyDefaultContent = "defaultContent"
)

// SchemaFromMetadata builds the schema for one filtering pass from the user
// settings and the parsed document header. A nil header yields a disabled
// schema. The returned diagnostics describe skipped or degraded entries.
func SchemaFromMetadata(settings Settings, meta map[string]any) (Schema, []string) {
	schema := Schema{
		TriggerPhrase: settings.TriggerPhrase,
		Separator:     settings.Separator,
	}
	if schema.TriggerPhrase == "" {
		schema.TriggerPhrase = DefaultTriggerPhrase
	}
	if meta == nil {
		return schema, nil
	}

	schema.Enabled = boolField(meta, keyEnabled) || boolField(meta, keyEnabledAlias)

	if v, ok := meta[keyTriggerPhrase].(string); ok && v != "" {
		schema.TriggerPhrase = v
	}
	if v, ok := meta[keySeparator].(string); ok {
		schema.Separator = v
	}

	defs, diags := DefinitionsFromMetadata(meta[keyAnnotations])
	schema.Annotations = defs
	return schema, diags
}

// DefinitionsFromMetadata decodes the annotations list of a document header.
// Malformed entries are skipped rather than failing the whole list.
func DefinitionsFromMetadata(raw any) ([]Definition, []string) {
	if raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, []string{fmt.Sprintf("%s: expected a list, got %T", keyAnnotations, raw)}
	}

	var (
		defs  []Definition
		diags []string
	)
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			diags = append(diags, fmt.Sprintf("%s[%d]: expected a mapping, got %T", keyAnnotations, i, item))
			continue
		}
		name, _ := m[keyName].(string)
		if name == "" {
			diags = append(diags, fmt.Sprintf("%s[%d]: missing name", keyAnnotations, i))
			continue
		}
		kindRaw, ok := m[keyKind].(string)
		if !ok {
			kindRaw, _ = m[keyKindAlias].(string)
		}
		kind := Kind(kindRaw)
		if !kind.Valid() {
			diags = append(diags, fmt.Sprintf("%s[%d] %q: unknown kind %q", keyAnnotations, i, name, kindRaw))
			continue
		}
		def := Definition{Name: name, Kind: kind}
		if dc, ok := m[keyDefaultContent].(string); ok {
			if d := DefaultContent(dc); d.Valid() {
				def.DefaultContent = d
			} else {
				diags = append(diags, fmt.Sprintf("%s[%d] %q: unknown defaultContent %q ignored", keyAnnotations, i, name, dc))
			}
		}
		defs = append(defs, def)
	}
	return defs, diags
}

func boolField(meta map[string]any, key string) bool {
	v, _ := meta[key].(bool)
	return v
}
