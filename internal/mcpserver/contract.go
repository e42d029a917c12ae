package mcpserver

// SchemaFormatContract describes the document header that enables inline
// annotation suggestions and declares the available annotations.
const SchemaFormatContract = `# Annotation Schema Format

A document opts into annotation suggestions through its YAML header.

## Structure

` + "```" + `markdown
---
dataviewAnnotation: true            # REQUIRED – suggestions are off without it
annotations:                        # REQUIRED – ordered list of definitions
  - name: task                      # REQUIRED – annotation field name
    type: item                      # REQUIRED – item or value
  - name: due
    type: value
    defaultContent: today           # OPTIONAL – adds a candidate with today's date
triggerPhrase: ";;"                 # OPTIONAL – overrides the user setting
separator: "."                      # OPTIONAL – overrides the user setting
---
` + "```" + `

## Rendering

- ` + "`item`" + ` annotations render as ` + "`- name::content`" + ` (a list item).
- ` + "`value`" + ` annotations render as ` + "`[name::content]`" + ` (inline).

## Typing

1. Type the trigger phrase (default ` + "`;;`" + `) to open suggestions.
2. Type part of a name to narrow the list. Names match by case-sensitive substring.
   When nothing matches, every annotation is offered.
3. Type the separator (default ` + "`.`" + `) and then the content. Only the first
   separator splits; later ones belong to the content.
4. Annotations with ` + "`defaultContent: today`" + ` also offer a candidate filled with
   the current date as ` + "`YYYY-MM-DD`" + `.

## Rules

1. The header must be the first thing in the file.
2. Definitions missing ` + "`name`" + ` or with an unknown ` + "`type`" + ` are ignored.
3. An unknown ` + "`defaultContent`" + ` is ignored; the definition itself is kept.
4. The order of ` + "`annotations`" + ` is the order of suggestions.
`
