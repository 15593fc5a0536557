package sfz

import "strings"

type metaField struct {
	label string
	set   func(*Metadata, string)
}

// Labels as written by common SoundFont-to-SFZ converters. "Intented for" is
// the spelling those files actually carry.
var metaFields = []metaField{
	{"Internal name", func(m *Metadata, v string) { m.InternalName = v }},
	{"Sound engineer", func(m *Metadata, v string) { m.SoundEngineer = v }},
	{"Creation date", func(m *Metadata, v string) { m.CreationDate = v }},
	{"Parent file", func(m *Metadata, v string) { m.ParentFile = v }},
	{"SoundFont version", func(m *Metadata, v string) { m.SoundfontVersion = v }},
	{"Editor", func(m *Metadata, v string) { m.Editor = v }},
	{"Converter copyright", func(m *Metadata, v string) { m.ConverterCopyright = v }},
	{"Converter", func(m *Metadata, v string) { m.Converter = v }},
	{"Conversion date", func(m *Metadata, v string) { m.ConversionDate = v }},
	{"Optimised for", func(m *Metadata, v string) { m.OptimisedFor = v }},
	{"Optimized for", func(m *Metadata, v string) { m.OptimisedFor = v }},
	{"Intented for", func(m *Metadata, v string) { m.IntendedFor = v }},
}

// Prefixes matched without a colon.
var metaPrefixes = []metaField{
	{"Converted with ", func(m *Metadata, v string) { m.Converter = v }},
	{"Copyright ", func(m *Metadata, v string) { m.ConverterCopyright = v }},
}

// ParseMetadata extracts provenance fields from the first /* ... */ block of
// text. Text without such a block yields an empty Metadata.
func ParseMetadata(text string) Metadata {
	var m Metadata
	start := strings.Index(text, "/*")
	if start < 0 {
		return m
	}
	end := strings.Index(text[start+2:], "*/")
	if end < 0 {
		return m
	}
	block := text[start+2 : start+2+end]
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, " \t*/"))
		if line == "" {
			continue
		}
		parseMetaLine(&m, line)
	}
	return m
}

func parseMetaLine(m *Metadata, line string) {
	for _, f := range metaFields {
		if !hasPrefixFold(line, f.label) {
			continue
		}
		rest := strings.TrimLeft(line[len(f.label):], " \t")
		if !strings.HasPrefix(rest, ":") {
			continue
		}
		f.set(m, strings.TrimSpace(rest[1:]))
		return
	}
	for _, f := range metaPrefixes {
		if hasPrefixFold(line, f.label) {
			v := strings.TrimSpace(line[len(f.label):])
			f.set(m, strings.TrimSpace(strings.TrimPrefix(v, ":")))
			return
		}
	}
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
