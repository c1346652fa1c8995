// Copyright 2025 Poiesic Systems
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



package bench

import "errors"

var (
	// ErrGeneratorRequired is returned when no query collaborator is provided.
	ErrGeneratorRequired = errors.New("generator required")

	// ErrValidatorRequired is returned when no output validator is provided.
	ErrValidatorRequired = errors.New("validator required")

	// ErrScorerRequired is returned when no scorer is provided.
	ErrScorerRequired = errors.New("scorer required")

	// ErrQueryFailed marks a failed query. It is recorded on the entry and
	// logged, never returned from Run.
	ErrQueryFailed = errors.New("query failed")

	// ErrInvalidDelay is returned for a negative inter-entry delay.
	ErrInvalidDelay = errors.New("delay must not be negative")

	// ErrResumeUnavailable is returned when resuming without a result repository.
	ErrResumeUnavailable = errors.New("resume requires a result repository")

	// ErrPersistFailed is returned when the report cannot be written.
	ErrPersistFailed = errors.New("persist report failed")
)
