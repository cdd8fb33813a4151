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

/*
Package engine resolves Links between stored objects.

A Link object holds the key of another entry in the store. On a read, the
client may ask for links to be resolved to a given depth: each followed
link costs one level, and Lists and Maps are rebuilt with their contents
resolved recursively. The depth bound is what makes link cycles terminate -
a cycle simply stops resolving as an ordinary Link once the budget runs
out.
*/
package engine

import (
	"crabdb/internal/object"
	"crabdb/internal/storage"
)

// Resolver rewrites Link objects into the objects they reference, reading
// through a Store.
type Resolver struct {
	store storage.Store
}

// NewResolver creates a Resolver reading from store.
func NewResolver(store storage.Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns obj with links resolved up to depth levels. Depth zero
// returns the object unchanged. A link to an unbound key resolves to
// whatever the store returns for it (Null).
func (r *Resolver) Resolve(obj object.Object, depth int) (object.Object, error) {
	if depth <= 0 {
		return obj, nil
	}
	switch obj.Kind {
	case object.KindLink:
		return r.resolveLink(obj, depth)
	case object.KindList:
		return r.resolveList(obj, depth)
	case object.KindMap:
		return r.resolveMap(obj, depth)
	default:
		// Null, Int, Text cannot contain links.
		return obj, nil
	}
}

// resolveLink follows one link, spending a level, and resolves whatever it
// finds with the remaining budget.
func (r *Resolver) resolveLink(obj object.Object, depth int) (object.Object, error) {
	key, err := obj.LinkKey()
	if err != nil {
		return object.Object{}, err
	}
	target, err := r.store.Get(key)
	if err != nil {
		return object.Object{}, err
	}
	return r.Resolve(target, depth-1)
}

// resolveList rebuilds a list with each element resolved. Containers do
// not consume a level themselves; only followed links do.
func (r *Resolver) resolveList(obj object.Object, depth int) (object.Object, error) {
	items, err := obj.Items()
	if err != nil {
		return object.Object{}, err
	}
	var b object.ListBuilder
	for _, item := range items {
		resolved, err := r.Resolve(item, depth)
		if err != nil {
			return object.Object{}, err
		}
		if err := b.Append(resolved); err != nil {
			return object.Object{}, err
		}
	}
	return b.Build(), nil
}

// resolveMap rebuilds a map with each field value resolved.
func (r *Resolver) resolveMap(obj object.Object, depth int) (object.Object, error) {
	fields, err := obj.Fields()
	if err != nil {
		return object.Object{}, err
	}
	var b object.MapBuilder
	for _, f := range fields {
		resolved, err := r.Resolve(f.Value, depth)
		if err != nil {
			return object.Object{}, err
		}
		if err := b.AddField(f.Name, resolved); err != nil {
			return object.Object{}, err
		}
	}
	return b.Build(), nil
}
