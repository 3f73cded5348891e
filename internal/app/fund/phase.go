//
// Copyright 2019 Insolar Technologies GmbH
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
//

package fund

// Phase is the position of a flow in the challenge/response protocol.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseAwaitingChallenge
	PhaseAwaitingCode
	PhaseSettling
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseAwaitingChallenge:
		return "AwaitingChallenge"
	case PhaseAwaitingCode:
		return "AwaitingCode"
	case PhaseSettling:
		return "Settling"
	}
	return "Unknown"
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Active is true for every phase except Idle.
func (p Phase) Active() bool {
	return p != PhaseIdle
}

// Action names a flow type.
type Action string

const (
	ActionContribution Action = "contribution"
	ActionPayout       Action = "payout"
)

// Step names a ledger write within a flow.
type Step string

const (
	StepChallenge Step = "challenge"
	StepSubmit    Step = "submit"
)
