// Copyright 2025 Calyptra Labs
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

// Package index builds and serves a hub's persisted vector index.
//
// An index directory holds two things: a BadgerDB store with chunk records
// and the per-file corpus text they were cut from, and an HNSW graph mapping
// chunk ids to embedding vectors. Builder writes a complete new index into a
// staging directory and atomically promotes it; Handle opens the live
// directory read-mostly for search and corpus reads. Keeping the corpus text
// alongside the index is what lets a sync fetch only changed files and still
// rebuild the index over every file the hub contains.
package index
