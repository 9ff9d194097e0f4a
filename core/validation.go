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

import "fmt"

const maxHubNameLength = 100

// ValidateHubName validates a hub identifier.
//
// Validation rules:
//   - 1 to 100 characters
//   - alphanumeric plus underscores and hyphens only
//
// Hub names become directory names under the persistence root, so anything
// path-like is rejected outright.
func ValidateHubName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidHubName)
	}
	if len(name) > maxHubNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidHubName, maxHubNameLength)
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '-':
		default:
			return fmt.Errorf("%w: character %q not allowed", ErrInvalidHubName, r)
		}
	}
	return nil
}
