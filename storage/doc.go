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

// Package storage defines the persistence contracts of cyberbench.
//
// Three repositories cover everything the tool keeps between processes:
//
//   - ResultRepository: benchmark entries and the summary of each run
//   - CheckpointRepository: the last completed index of a run, for resuming
//   - TurnRepository: assistant conversation history per session
//
// Values are stored as JSON (see MarshalBenchmarkEntry and friends) so that a
// stored run can be exported as a report file without conversion. The badger
// sub-package implements every repository on a single BadgerDB backend:
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    return err
//	}
//	defer backend.Close()
//	results := badger.NewResultRepository(backend)
//
// Tests use badger.NewMemoryRepositories. All methods take a context and are
// safe for concurrent use.
package storage
