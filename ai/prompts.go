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


package ai

import "strings"

// SystemPrompt is the fixed preamble sent ahead of every benchmark prompt.
const SystemPrompt = "You are a cybersecurity education assistant. " +
	"Your tasks include:\n" +
	"  • Teaching secure coding with OWASP/NIST principles\n" +
	"  • Simulating cyber-attack scenarios step-by-step\n" +
	"  • Reviewing code for vulnerabilities and recommending fixes\n" +
	"  • Assessing learner answers against OWASP Top 10\n" +
	"  • Explaining rationale with references to standards\n" +
	"Always cite OWASP, NIST, or other authoritative sources. " +
	"Never hallucinate or expose internal details."

// AssistantPrompt is the preamble used by the live assistant.
const AssistantPrompt = SystemPrompt +
	" You must always give references, and only of authoritative sources like OWASP, NIST, or similar."

// BenchmarkPrompt builds the prompt for one dataset entry. Instruction and
// input are trimmed; the model is asked to answer in JSON.
func BenchmarkPrompt(instruction, input string) string {
	var b strings.Builder
	b.WriteString(SystemPrompt)
	b.WriteString("\nInstruction: ")
	b.WriteString(strings.TrimSpace(instruction))
	b.WriteString("\nInput: ")
	b.WriteString(strings.TrimSpace(input))
	b.WriteString("\nOutput (in JSON):")
	return b.String()
}

// Exchange is one prior message rendered into a conversation prompt.
type Exchange struct {
	Role    string // "User" or "Assistant"
	Message string
}

// ConversationPrompt builds the live assistant prompt from the preamble, the
// recent exchanges and the new user prompt.
func ConversationPrompt(history []Exchange, prompt string) string {
	var b strings.Builder
	b.WriteString(AssistantPrompt)
	b.WriteString("\n")
	for _, e := range history {
		b.WriteString(e.Role)
		b.WriteString(": ")
		b.WriteString(e.Message)
		b.WriteString("\n")
	}
	b.WriteString("User: ")
	b.WriteString(prompt)
	return b.String()
}
