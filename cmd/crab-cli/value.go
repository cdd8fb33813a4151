/*
 * Copyright (c) 2026 CrabDB Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"crabdb/internal/object"
)

// parseValue parses one value literal, requiring it to consume the whole
// input.
func parseValue(s string) (object.Object, error) {
	p := &valueParser{input: s}
	obj, err := p.parse()
	if err != nil {
		return object.Object{}, err
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return object.Object{}, fmt.Errorf("unexpected trailing input at %q", p.input[p.pos:])
	}
	return obj, nil
}

// valueParser is a single-pass recursive-descent parser over the literal
// syntax printed by formatObject.
type valueParser struct {
	input string
	pos   int
}

func (p *valueParser) skipSpace() {
	for p.pos < len(p.input) && unicode.IsSpace(rune(p.input[p.pos])) {
		p.pos++
	}
}

func (p *valueParser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *valueParser) parse() (object.Object, error) {
	p.skipSpace()
	switch c := p.peek(); {
	case c == 0:
		return object.Object{}, fmt.Errorf("unexpected end of input")
	case c == '"':
		text, err := p.quoted()
		if err != nil {
			return object.Object{}, err
		}
		return object.NewText(text)
	case c == '[':
		return p.list()
	case c == '{':
		return p.mapObject()
	case c == '@':
		p.pos++
		key := p.word()
		if key == "" {
			return object.Object{}, fmt.Errorf("@ must be followed by a key")
		}
		return object.NewLink(key)
	case c == '-' || c >= '0' && c <= '9':
		return p.number()
	default:
		word := p.word()
		if word == "null" {
			return object.Null(), nil
		}
		return object.Object{}, fmt.Errorf("cannot parse %q as a value", word)
	}
}

// word reads up to the next delimiter.
func (p *valueParser) word() string {
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if unicode.IsSpace(rune(c)) || strings.ContainsRune(",]}:", rune(c)) {
			break
		}
		p.pos++
	}
	return p.input[start:p.pos]
}

func (p *valueParser) number() (object.Object, error) {
	word := p.word()
	n, err := strconv.ParseInt(word, 10, 64)
	if err != nil {
		return object.Object{}, fmt.Errorf("bad integer %q", word)
	}
	return object.NewInt(n), nil
}

// quoted reads a double-quoted string with \" and \\ escapes.
func (p *valueParser) quoted() (string, error) {
	p.pos++ // opening quote
	var b strings.Builder
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		switch c {
		case '\\':
			if p.pos+1 >= len(p.input) {
				return "", fmt.Errorf("dangling escape")
			}
			p.pos++
			b.WriteByte(p.input[p.pos])
		case '"':
			p.pos++
			return b.String(), nil
		default:
			b.WriteByte(c)
		}
		p.pos++
	}
	return "", fmt.Errorf("unterminated string")
}

func (p *valueParser) list() (object.Object, error) {
	p.pos++ // '['
	var b object.ListBuilder
	p.skipSpace()
	if p.peek() == ']' {
		p.pos++
		return b.Build(), nil
	}
	for {
		item, err := p.parse()
		if err != nil {
			return object.Object{}, err
		}
		if err := b.Append(item); err != nil {
			return object.Object{}, err
		}
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case ']':
			p.pos++
			return b.Build(), nil
		default:
			return object.Object{}, fmt.Errorf("expected ',' or ']' in list")
		}
	}
}

func (p *valueParser) mapObject() (object.Object, error) {
	p.pos++ // '{'
	var b object.MapBuilder
	p.skipSpace()
	if p.peek() == '}' {
		p.pos++
		return b.Build(), nil
	}
	for {
		p.skipSpace()
		var name string
		if p.peek() == '"' {
			quoted, err := p.quoted()
			if err != nil {
				return object.Object{}, err
			}
			name = quoted
		} else {
			name = p.word()
		}
		if name == "" {
			return object.Object{}, fmt.Errorf("expected field name")
		}
		p.skipSpace()
		if p.peek() != ':' {
			return object.Object{}, fmt.Errorf("expected ':' after field name %q", name)
		}
		p.pos++

		value, err := p.parse()
		if err != nil {
			return object.Object{}, err
		}
		if err := b.AddField(name, value); err != nil {
			return object.Object{}, err
		}

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case '}':
			p.pos++
			return b.Build(), nil
		default:
			return object.Object{}, fmt.Errorf("expected ',' or '}' in map")
		}
	}
}

// formatObject renders an object in the same literal syntax parseValue
// accepts.
func formatObject(o object.Object) string {
	switch o.Kind {
	case object.KindNull:
		return "null"
	case object.KindInt:
		v, err := o.IntValue()
		if err != nil {
			return fmt.Sprintf("<bad int: %v>", err)
		}
		return strconv.FormatInt(v, 10)
	case object.KindText:
		s, err := o.TextValue()
		if err != nil {
			return fmt.Sprintf("<bad text: %v>", err)
		}
		return strconv.Quote(s)
	case object.KindLink:
		key, err := o.LinkKey()
		if err != nil {
			return fmt.Sprintf("<bad link: %v>", err)
		}
		return "@" + key
	case object.KindList:
		items, err := o.Items()
		if err != nil {
			return fmt.Sprintf("<bad list: %v>", err)
		}
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = formatObject(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case object.KindMap:
		fields, err := o.Fields()
		if err != nil {
			return fmt.Sprintf("<bad map: %v>", err)
		}
		parts := make([]string, len(fields))
		for i, f := range fields {
			// Quote names that the parser would not read back as one word.
			name := f.Name
			for j := 0; j < len(name); j++ {
				if unicode.IsSpace(rune(name[j])) || strings.IndexByte(",]}:\"", name[j]) >= 0 {
					name = strconv.Quote(f.Name)
					break
				}
			}
			parts[i] = fmt.Sprintf("%s: %s", name, formatObject(f.Value))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprintf("<unknown kind %d>", o.Kind)
	}
}
