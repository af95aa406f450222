// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package bank

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// classifiedErrorType is the wire discriminator of a recognized provider sync failure.
const classifiedErrorType = "BankSyncError"

// Issue is a problem reported for one account during a sync. Implementations are
// ClassifiedError and GenericIssue only.
type Issue interface {
	issue()
}

// ClassifiedError is a recognized provider failure telling the account link is broken.
type ClassifiedError struct {
	Category string
	Code     string
	Message  string
}

func (ClassifiedError) issue() {}

// GenericIssue is any other problem surfaced while syncing, such as a transport error.
type GenericIssue struct {
	Message  string
	Internal string
}

func (GenericIssue) issue() {}

// wireIssue is the provider representation of both issue kinds.
type wireIssue struct {
	Type     string `json:"type,omitempty" yaml:"type,omitempty"`
	Category string `json:"category,omitempty" yaml:"category,omitempty"`
	Code     string `json:"code,omitempty" yaml:"code,omitempty"`
	Message  string `json:"message,omitempty" yaml:"message,omitempty"`
	Internal string `json:"internal,omitempty" yaml:"internal,omitempty"`
}

func (w wireIssue) decode() Issue {
	if w.Type == classifiedErrorType {
		return ClassifiedError{Category: w.Category, Code: w.Code, Message: w.Message}
	}

	return GenericIssue{Message: w.Message, Internal: w.Internal}
}

func encodeIssue(issue Issue) wireIssue {
	switch i := issue.(type) {
	case ClassifiedError:
		return wireIssue{Type: classifiedErrorType, Category: i.Category, Code: i.Code, Message: i.Message}
	case GenericIssue:
		return wireIssue{Message: i.Message, Internal: i.Internal}
	default:
		return wireIssue{}
	}
}

// Issues is an ordered list of issues that knows how to decode itself from provider payloads.
type Issues []Issue

// UnmarshalJSON picks the concrete issue kind once, at the provider boundary.
func (is *Issues) UnmarshalJSON(data []byte) error {
	var raw []wireIssue
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*is = decodeIssues(raw)
	return nil
}

// MarshalJSON writes the issues back in the provider representation.
func (is Issues) MarshalJSON() ([]byte, error) {
	raw := make([]wireIssue, 0, len(is))
	for _, issue := range is {
		raw = append(raw, encodeIssue(issue))
	}

	return json.Marshal(raw)
}

// UnmarshalYAML decodes fixtures using the same discriminator as the JSON payloads.
func (is *Issues) UnmarshalYAML(value *yaml.Node) error {
	var raw []wireIssue
	if err := value.Decode(&raw); err != nil {
		return err
	}

	*is = decodeIssues(raw)
	return nil
}

func decodeIssues(raw []wireIssue) Issues {
	if len(raw) == 0 {
		return nil
	}

	issues := make(Issues, 0, len(raw))
	for _, w := range raw {
		issues = append(issues, w.decode())
	}
	return issues
}
