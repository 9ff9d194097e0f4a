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

// Package dochub keeps searchable hubs of documents in sync with their
// remote sources.
//
// A hub is a named collection of files living somewhere remote (a shared
// drive folder, typically). dochub ingests a hub once, then synchronizes it
// incrementally: each sync lists the source, diffs the listing against the
// hub's manifest, fetches and extracts only the files that changed, and
// rebuilds the hub's vector index over the full corpus. Loaded hubs answer
// natural-language questions grounded in their indexed content.
//
// # Usage
//
//	cfg := dochub.DefaultConfig()
//	remote, _ := graph.NewClient(tenantID, clientID, clientSecret)
//	svc, err := dochub.NewService(cfg, remote)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer svc.Close()
//
//	outcome, err := svc.Ingest(ctx, "handbook", shareLink)
//	answer, err := svc.Query(ctx, "handbook", "what is the travel policy?")
package dochub
