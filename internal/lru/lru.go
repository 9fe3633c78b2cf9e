// Copyright 2014 The Cayley Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package lru implements a fixed-size cache with least recently used eviction.
package lru

import "sync"

type entry struct {
	key        string
	value      interface{}
	prev, next *entry
}

// Cache implements an LRU cache. It is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	cache   map[string]*entry
	root    entry // root.next is the most recently used entry, root.prev the least
	maxSize int
}

// New creates a cache holding up to size entries. A size below 1 is treated as 1.
func New(size int) *Cache {
	if size < 1 {
		size = 1
	}
	c := &Cache{
		maxSize: size,
		cache:   make(map[string]*entry, size),
	}
	c.root.prev, c.root.next = &c.root, &c.root
	return c
}

func (lru *Cache) unlink(e *entry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	e.prev, e.next = nil, nil
}

func (lru *Cache) pushFront(e *entry) {
	e.prev = &lru.root
	e.next = lru.root.next
	lru.root.next.prev = e
	lru.root.next = e
}

// Put adds or updates a value and marks it as recently used.
func (lru *Cache) Put(key string, value interface{}) {
	lru.mu.Lock()
	defer lru.mu.Unlock()
	if e, ok := lru.cache[key]; ok {
		e.value = value
		lru.unlink(e)
		lru.pushFront(e)
		return
	}
	if len(lru.cache) >= lru.maxSize {
		last := lru.root.prev
		lru.unlink(last)
		delete(lru.cache, last.key)
	}
	e := &entry{key: key, value: value}
	lru.pushFront(e)
	lru.cache[key] = e
}

func (lru *Cache) Del(key string) {
	lru.mu.Lock()
	defer lru.mu.Unlock()
	e := lru.cache[key]
	if e == nil {
		return
	}
	delete(lru.cache, key)
	lru.unlink(e)
}

func (lru *Cache) Get(key string) (interface{}, bool) {
	lru.mu.Lock()
	defer lru.mu.Unlock()
	if e, ok := lru.cache[key]; ok {
		lru.unlink(e)
		lru.pushFront(e)
		return e.value, true
	}
	return nil, false
}

// Len returns the number of cached values.
func (lru *Cache) Len() int {
	lru.mu.Lock()
	defer lru.mu.Unlock()
	return len(lru.cache)
}
