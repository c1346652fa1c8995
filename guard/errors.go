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


package guard

import "errors"

var (
	// ErrDisallowedPattern indicates a prompt matched a sanitizer rule.
	ErrDisallowedPattern = errors.New("prompt contains disallowed pattern")

	// ErrValidationFailed indicates text did not pass validation.
	ErrValidationFailed = errors.New("validation failed")

	// ErrInvalidRules indicates a rule table could not be loaded or compiled.
	ErrInvalidRules = errors.New("invalid rule table")

	// ErrUnknownPolicy indicates an embedded policy name is not known.
	ErrUnknownPolicy = errors.New("unknown sanitizer policy")
)
