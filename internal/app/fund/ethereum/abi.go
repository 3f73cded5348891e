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

package ethereum

// fundABI covers the part of the fund contract a member client touches.
const fundABI = `[
	{"type":"function","name":"members","stateMutability":"view",
	 "inputs":[{"name":"","type":"address"}],
	 "outputs":[
		{"name":"name","type":"string"},
		{"name":"village","type":"string"},
		{"name":"lat","type":"string"},
		{"name":"lng","type":"string"},
		{"name":"mobileNo","type":"string"},
		{"name":"groupId","type":"uint256"},
		{"name":"merit","type":"uint256"},
		{"name":"onboardingDate","type":"uint256"},
		{"name":"contribution","type":"uint256"}]},
	{"type":"function","name":"pot","stateMutability":"view",
	 "inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getCurrentMonth","stateMutability":"view",
	 "inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"compensationAmount","stateMutability":"view",
	 "inputs":[{"name":"","type":"uint256"},{"name":"","type":"address"}],
	 "outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"preContributeVerification","stateMutability":"nonpayable",
	 "inputs":[{"name":"amount","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"contribute","stateMutability":"nonpayable",
	 "inputs":[{"name":"otp","type":"uint256"},{"name":"amount","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"prePayoutVerification","stateMutability":"nonpayable",
	 "inputs":[],"outputs":[]},
	{"type":"function","name":"payoutCompensation","stateMutability":"nonpayable",
	 "inputs":[{"name":"otp","type":"uint256"}],"outputs":[]}
]`

const (
	methodMembers            = "members"
	methodPot                = "pot"
	methodCurrentMonth       = "getCurrentMonth"
	methodCompensationAmount = "compensationAmount"
	methodPreContribute      = "preContributeVerification"
	methodContribute         = "contribute"
	methodPrePayout          = "prePayoutVerification"
	methodPayout             = "payoutCompensation"
)
