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

package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidListing indicates a fresh remote listing failed validation.
	ErrInvalidListing = errors.New("invalid remote listing")

	// ErrDuplicateFileID indicates the fresh listing contains the same file id twice.
	ErrDuplicateFileID = errors.New("duplicate file id")

	// ErrEmptyFileID indicates a descriptor with an empty id.
	ErrEmptyFileID = errors.New("file id cannot be empty")

	// ErrInvalidHubName indicates a hub name failed validation.
	ErrInvalidHubName = errors.New("invalid hub name")
)
