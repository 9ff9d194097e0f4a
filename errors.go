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

package dochub

import "errors"

var (
	// ErrHubNotLoaded is returned when an operation requires a hub to be
	// loaded into the registry and it is not.
	ErrHubNotLoaded = errors.New("hub not loaded")

	// ErrNoSource is returned when a hub has no recorded source reference
	// to sync from.
	ErrNoSource = errors.New("hub has no recorded source")

	// ErrNilRemoteStore indicates a service was constructed without a
	// remote store.
	ErrNilRemoteStore = errors.New("remote store is required")
)
