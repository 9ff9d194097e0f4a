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

package graph

import "errors"

var (
	// ErrMissingCredentials indicates the client was constructed without
	// a tenant id, client id, or client secret.
	ErrMissingCredentials = errors.New("tenant id, client id and client secret are required")

	// ErrTokenRequest indicates the OAuth2 token endpoint rejected the request.
	ErrTokenRequest = errors.New("token request failed")

	// ErrGraphRequest indicates a Graph API call returned a non-success status.
	ErrGraphRequest = errors.New("graph request failed")

	// ErrDownloadFailed indicates a file content download returned a non-success status.
	ErrDownloadFailed = errors.New("download failed")
)
