package deploystate

import (
	"encoding/json"
	"fmt"
	"sort"
)

// DocumentVersion is the current deployed-state document format version.
const DocumentVersion = 1

// Resource kind keys under TargetRecord.Resources.
const (
	KindAgents = "agents"
)

// AgentRuntime records the runtime identity of one deployed agent. Both
// fields always come from the same deploy's outputs; a record is never
// created with only one of them set.
type AgentRuntime struct {
	RuntimeID  string `json:"runtimeId"`
	RuntimeARN string `json:"runtimeArn"`
}

// TargetRecord is the per-target slice of the deployed-state document.
// Resource kinds are held raw so that kinds written by a newer version of
// the tool survive a read-modify-write cycle untouched.
type TargetRecord struct {
	StackName string                     `json:"stackName"`
	Resources map[string]json.RawMessage `json:"resources"`
}

// Agents decodes the agents resource kind of the record. A record without
// an agents kind yields an empty map.
func (r *TargetRecord) Agents() (map[string]AgentRuntime, error) {
	raw, ok := r.Resources[KindAgents]
	if !ok {
		return map[string]AgentRuntime{}, nil
	}
	var agents map[string]AgentRuntime
	if err := json.Unmarshal(raw, &agents); err != nil {
		return nil, fmt.Errorf("failed to decode agents for stack %s: %w", r.StackName, err)
	}
	return agents, nil
}

// AgentNames returns the recorded agent names in sorted order.
func (r *TargetRecord) AgentNames() ([]string, error) {
	agents, err := r.Agents()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(agents))
	for name := range agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Document is the persisted deployed-state document: the authoritative
// record of what is live, per target. Serial is a monotonic counter bumped
// on every write and checked before writing to detect lost updates.
type Document struct {
	Version int                      `json:"version"`
	Serial  int                      `json:"serial"`
	Targets map[string]*TargetRecord `json:"targets"`
}

// NewDocument returns an empty deployed-state document, used when no state
// has ever been persisted.
func NewDocument() *Document {
	return &Document{
		Version: DocumentVersion,
		Targets: map[string]*TargetRecord{},
	}
}

// Merge returns a new document in which targets[targetName] records the
// given stack and freshly parsed agents. The agents kind for that target is
// replaced wholesale; its other resource kinds, and every other target, are
// carried over unchanged. A nil existing document is treated as empty.
// Merge never mutates its input.
func Merge(existing *Document, targetName, stackName string, agents map[string]AgentRuntime) *Document {
	merged := NewDocument()
	if existing != nil {
		merged.Serial = existing.Serial
		for name, rec := range existing.Targets {
			merged.Targets[name] = copyRecord(rec)
		}
	}

	rec, ok := merged.Targets[targetName]
	if !ok {
		rec = &TargetRecord{Resources: map[string]json.RawMessage{}}
		merged.Targets[targetName] = rec
	}
	rec.StackName = stackName

	// Marshal of a map[string]AgentRuntime cannot fail.
	raw, _ := json.Marshal(agents)
	rec.Resources[KindAgents] = raw

	return merged
}

func copyRecord(rec *TargetRecord) *TargetRecord {
	out := &TargetRecord{
		StackName: rec.StackName,
		Resources: make(map[string]json.RawMessage, len(rec.Resources)),
	}
	for kind, raw := range rec.Resources {
		dup := make(json.RawMessage, len(raw))
		copy(dup, raw)
		out.Resources[kind] = dup
	}
	return out
}

// ParseDocument decodes a deployed-state document from its JSON form.
func ParseDocument(raw []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse deployed-state document: %w", err)
	}
	if doc.Targets == nil {
		doc.Targets = map[string]*TargetRecord{}
	}
	for _, rec := range doc.Targets {
		if rec.Resources == nil {
			rec.Resources = map[string]json.RawMessage{}
		}
	}
	return &doc, nil
}

// EncodeDocument renders the document as indented JSON.
func EncodeDocument(doc *Document) ([]byte, error) {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode deployed-state document: %w", err)
	}
	return append(raw, '\n'), nil
}
